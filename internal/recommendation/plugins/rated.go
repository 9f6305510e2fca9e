// internal/recommendation/plugins/rated.go
package plugins

import (
	"fmt"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const (
	TelecomKey             = "telecom"
	ChildcareKey           = "childcare"
	StorageKey             = "storage"
	TransportKey           = "transport"
	LanguageIntegrationKey = "language_integration"
	LegalAdminKey          = "legal_admin"
	TaxFinanceKey          = "tax_finance"
)

// Rated scores providers on rating (70%) and availability (30%) only. Criteria are
// validated and echoed but do not move the score.
type Rated struct {
	base
	newCriteria  func() interface{}
	levels       levelTable
	defaultLevel model.AvailabilityLevel
	fallback     float64
	rationale    string
}

func (p *Rated) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := p.newCriteria()
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Rated) Score(_ model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", p.defaultLevel)
	if err != nil {
		return nil, err
	}
	availability := p.levels.score(level, p.fallback)

	return &model.ScoreResult{
		RawScore:  ratingScore*0.7 + availability*0.3,
		Breakdown: map[string]float64{"rating": ratingScore, "availability": availability},
		Summary:   fmt.Sprintf("%s — %s/5.", item.Name(), fmtNum(stars)),
		Rationale: p.rationale,
		Pros:      []string{},
		Cons:      []string{},
		Metadata: map[string]interface{}{
			"rating":             rawOr(item, "rating", nil),
			"rating_count":       rawOr(item, "rating_count", nil),
			"availability_level": string(level),
			"confidence":         rawOr(item, "confidence", 85),
		},
	}, nil
}

var (
	threeLevels = levelTable{model.AvailabilityHigh: 100, model.AvailabilityMedium: 75, model.AvailabilityLow: 50}
	twoLevels   = levelTable{model.AvailabilityHigh: 100, model.AvailabilityMedium: 75}
)

type TelecomCriteria struct {
	Needs []string `mapstructure:"needs"`
}

func NewTelecom() *Rated {
	return &Rated{
		base: newBase(TelecomKey, "Telecom", validation.NewObjectSchema("TelecomCriteria", map[string]*validation.Property{
			"needs": validation.StringList("mobile", "broadband"),
		}), nil),
		newCriteria:  func() interface{} { return &TelecomCriteria{} },
		levels:       threeLevels,
		defaultLevel: model.AvailabilityHigh,
		fallback:     100,
		rationale:    "Telecom provider for mobile and broadband.",
	}
}

type ChildcareCriteria struct {
	ChildAges []int `mapstructure:"child_ages"`
}

func NewChildcare() *Rated {
	return &Rated{
		base: newBase(ChildcareKey, "Childcare", validation.NewObjectSchema("ChildcareCriteria", map[string]*validation.Property{
			"child_ages": validation.IntegerList(validation.Bounded("integer", 0, 18), 3),
		}), nil),
		newCriteria:  func() interface{} { return &ChildcareCriteria{} },
		levels:       threeLevels,
		defaultLevel: model.AvailabilityMedium,
		fallback:     75,
		rationale:    "Childcare and preschool options.",
	}
}

type StorageCriteria struct {
	VolumeM3       float64 `mapstructure:"volume_m3"`
	DurationMonths int     `mapstructure:"duration_months"`
}

func NewStorage() *Rated {
	return &Rated{
		base: newBase(StorageKey, "Furniture & Storage", validation.NewObjectSchema("StorageCriteria", map[string]*validation.Property{
			"volume_m3":       validation.NonNegativeNumber(5),
			"duration_months": validation.NonNegativeInteger(3),
		}), nil),
		newCriteria:  func() interface{} { return &StorageCriteria{} },
		levels:       twoLevels,
		defaultLevel: model.AvailabilityHigh,
		fallback:     100,
		rationale:    "Storage and furniture solutions.",
	}
}

type TransportCriteria struct {
	LicenseConversion bool `mapstructure:"license_conversion"`
	DrivingSchool     bool `mapstructure:"driving_school"`
}

func NewTransport() *Rated {
	return &Rated{
		base: newBase(TransportKey, "Transport & Driving", validation.NewObjectSchema("TransportCriteria", map[string]*validation.Property{
			"license_conversion": validation.Boolean(true),
			"driving_school":     validation.Boolean(false),
		}), nil),
		newCriteria:  func() interface{} { return &TransportCriteria{} },
		levels:       twoLevels,
		defaultLevel: model.AvailabilityHigh,
		fallback:     100,
		rationale:    "Driving license conversion and transport support.",
	}
}

type LanguageIntegrationCriteria struct {
	TargetLanguages    []string `mapstructure:"target_languages"`
	LessonFormat       string   `mapstructure:"lesson_format"`
	IntegrationSupport bool     `mapstructure:"integration_support"`
}

func NewLanguageIntegration() *Rated {
	return &Rated{
		base: newBase(LanguageIntegrationKey, "Language & Integration", validation.NewObjectSchema("LanguageIntegrationCriteria", map[string]*validation.Property{
			"target_languages":    validation.StringList("en"),
			"lesson_format":       validation.Enum("either", "in_person", "online", "either"),
			"integration_support": validation.Boolean(true),
		}), nil),
		newCriteria:  func() interface{} { return &LanguageIntegrationCriteria{} },
		levels:       threeLevels,
		defaultLevel: model.AvailabilityHigh,
		fallback:     100,
		rationale:    "Language lessons and cultural integration programs.",
	}
}

type LegalAdminCriteria struct {
	Services []string `mapstructure:"services"`
}

func NewLegalAdmin() *Rated {
	return &Rated{
		base: newBase(LegalAdminKey, "Legal & Admin", validation.NewObjectSchema("LegalAdminCriteria", map[string]*validation.Property{
			"services": validation.StringList("immigration", "lease"),
		}), nil),
		newCriteria:  func() interface{} { return &LegalAdminCriteria{} },
		levels:       twoLevels,
		defaultLevel: model.AvailabilityMedium,
		fallback:     75,
		rationale:    "Legal and administrative support for relocation.",
	}
}

type TaxFinanceCriteria struct {
	ExpatTax       bool `mapstructure:"expat_tax"`
	WealthPlanning bool `mapstructure:"wealth_planning"`
}

func NewTaxFinance() *Rated {
	return &Rated{
		base: newBase(TaxFinanceKey, "Tax & Finance Advisor", validation.NewObjectSchema("TaxFinanceCriteria", map[string]*validation.Property{
			"expat_tax":       validation.Boolean(true),
			"wealth_planning": validation.Boolean(false),
		}), nil),
		newCriteria:  func() interface{} { return &TaxFinanceCriteria{} },
		levels:       twoLevels,
		defaultLevel: model.AvailabilityHigh,
		fallback:     100,
		rationale:    "Tax and financial planning for expats.",
	}
}
