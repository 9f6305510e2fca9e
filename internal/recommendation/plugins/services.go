// internal/recommendation/plugins/services.go
package plugins

import (
	"fmt"
	"math"
	"strings"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const (
	BanksKey       = "banks"
	InsuranceKey   = "insurance"
	ElectricityKey = "electricity"
	MedicalKey     = "medical"
)

// ==========================
// Banks
// ==========================

type BanksCriteria struct {
	PreferredLanguages        []string `mapstructure:"preferred_languages"`
	FeeSensitivity            string   `mapstructure:"fee_sensitivity"`
	ExpatFriendlinessPriority int      `mapstructure:"expat_friendliness_priority"`
	DigitalPriority           int      `mapstructure:"digital_priority"`
	BranchNeed                string   `mapstructure:"branch_need"`
}

var (
	bankFeeLevels    = map[string]float64{"low": 100, "medium": 75, "high": 50}
	bankBranchLevels = map[string]float64{"high": 100, "medium": 75, "low": 50, "none": 30}
)

type Banks struct {
	base
}

func NewBanks() *Banks {
	return &Banks{base: newBase(BanksKey, "Banks", validation.NewObjectSchema("BanksCriteria", map[string]*validation.Property{
		"preferred_languages":         validation.StringList("en"),
		"fee_sensitivity":             validation.Enum("medium", "low", "medium", "high"),
		"expat_friendliness_priority": validation.BoundedInteger(8, 0, 10),
		"digital_priority":            validation.BoundedInteger(8, 0, 10),
		"branch_need":                 validation.Enum("medium", "none", "low", "medium", "high"),
	}), nil)}
}

func (p *Banks) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &BanksCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Banks) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*BanksCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}

	itemLangs, err := item.Strings("language_support")
	if err != nil {
		return nil, err
	}
	language := model.Clamp(100 - 20*float64(missing(orDefault(c.PreferredLanguages, "en"), itemLangs)))

	feeLevel, err := item.String("fee_level", "medium")
	if err != nil {
		return nil, err
	}
	fees := lookupOr(bankFeeLevels, feeLevel, 75)

	onboarding, err := item.Float("onboarding_ease", 6)
	if err != nil {
		return nil, err
	}
	digital, err := item.Float("digital_features", 7)
	if err != nil {
		return nil, err
	}
	expat, err := item.Float("expat_friendly", 7)
	if err != nil {
		return nil, err
	}
	onboarding, digital, expat = model.Clamp(onboarding*10), model.Clamp(digital*10), model.Clamp(expat*10)

	branchLevel, err := item.String("branch_availability", "medium")
	if err != nil {
		return nil, err
	}
	branch := lookupOr(bankBranchLevels, branchLevel, 75)

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityHigh)
	if err != nil {
		return nil, err
	}
	availability := fourLevels.score(level, 100)

	raw := math.Min(100, language*0.2+fees*0.15+onboarding*0.1+digital*0.15+expat*0.15+branch*0.1+ratingScore*0.1+availability*0.05)

	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"language":     language,
			"fees":         fees,
			"onboarding":   onboarding,
			"digital":      digital,
			"expat":        expat,
			"branch":       branch,
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — %s fees, expat-friendly, %s/5.", item.Name(), feeLevel, fmtNum(stars)),
		Rationale: fmt.Sprintf("Language support %s. Branch availability %s.", model.FormatList(itemLangs), branchLevel),
		Pros:      []string{fmt.Sprintf("Rating %s/5", fmtNum(stars)), fmt.Sprintf("Expat score %s", fmtNum(expat/10))},
		Cons:      []string{},
		Metadata:  serviceMetadata(item, level, 90),
	}, nil
}

// ==========================
// Insurance
// ==========================

type InsuranceCriteria struct {
	CoverageTypes        []string `mapstructure:"coverage_types"`
	DeductiblePreference string   `mapstructure:"deductible_preference"`
	FamilyCoverage       bool     `mapstructure:"family_coverage"`
}

type Insurance struct {
	base
}

func NewInsurance() *Insurance {
	return &Insurance{base: newBase(InsuranceKey, "Insurance", validation.NewObjectSchema("InsuranceCriteria", map[string]*validation.Property{
		"coverage_types":        validation.StringList("health"),
		"deductible_preference": validation.String("medium"),
		"family_coverage":       validation.Boolean(true),
	}), nil)}
}

func (p *Insurance) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &InsuranceCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Insurance) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*InsuranceCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}

	covered, err := item.Strings("coverage_types")
	if err != nil {
		return nil, err
	}
	coverage := model.Clamp(100 - 25*float64(missing(orDefault(c.CoverageTypes, "health"), covered)))

	options, err := item.Strings("deductible_options")
	if err != nil {
		return nil, err
	}
	deductible := 70.0
	if contains(options, c.DeductiblePreference) {
		deductible = 100
	}

	family := 40.0
	if !c.FamilyCoverage || item.Truthy("family_coverage") {
		family = 100
	}

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityHigh)
	if err != nil {
		return nil, err
	}
	availability := fourLevels.score(level, 100)

	raw := math.Min(100, coverage*0.35+deductible*0.2+family*0.2+ratingScore*0.15+availability*0.1)

	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"coverage":     coverage,
			"deductible":   deductible,
			"family":       family,
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — %s, %s/5.", item.Name(), strings.Join(covered, ", "), fmtNum(stars)),
		Rationale: fmt.Sprintf("Covers %s. Deductible options %s.", model.FormatList(covered), model.FormatList(options)),
		Pros:      []string{fmt.Sprintf("Rating %s/5", fmtNum(stars))},
		Cons:      []string{},
		Metadata:  serviceMetadata(item, level, 90),
	}, nil
}

// ==========================
// Electricity
// ==========================

type ElectricityCriteria struct {
	GreenPreference             bool   `mapstructure:"green_preference"`
	ContractFlexibility         string `mapstructure:"contract_flexibility"`
	PricingTransparencyPriority int    `mapstructure:"pricing_transparency_priority"`
}

var (
	flexibilityLevels = map[string]float64{"high": 100, "medium": 75, "low": 50}
	// retail electricity is never scarce; unknown levels read as fully available
	electricityLevels = levelTable{model.AvailabilityHigh: 100, model.AvailabilityMedium: 75, model.AvailabilityLow: 50}
)

type Electricity struct {
	base
}

func NewElectricity() *Electricity {
	return &Electricity{base: newBase(ElectricityKey, "Electricity", validation.NewObjectSchema("ElectricityCriteria", map[string]*validation.Property{
		"green_preference":              validation.Boolean(true),
		"contract_flexibility":          validation.Enum("medium", "low", "medium", "high"),
		"pricing_transparency_priority": validation.BoundedInteger(8, 0, 10),
	}), nil)}
}

func (p *Electricity) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &ElectricityCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Electricity) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*ElectricityCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}

	hasGreen := item.Truthy("green_options")
	green := 50.0
	if !c.GreenPreference || hasGreen {
		green = 100
	}

	flexLevel, err := item.String("contract_flexibility", "medium")
	if err != nil {
		return nil, err
	}
	flexibility := lookupOr(flexibilityLevels, flexLevel, 75)

	transparency, err := item.Float("pricing_transparency", 7)
	if err != nil {
		return nil, err
	}

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityHigh)
	if err != nil {
		return nil, err
	}
	availability := electricityLevels.score(level, 100)

	raw := math.Min(100, green*0.3+flexibility*0.25+model.Clamp(transparency*10)*0.2+ratingScore*0.15+availability*0.1)

	cons := []string{}
	if !hasGreen {
		cons = append(cons, "No green options")
	}
	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"green":        green,
			"flexibility":  flexibility,
			"transparency": model.Clamp(transparency * 10),
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — %s flexibility, green=%t, %s/5.", item.Name(), flexLevel, hasGreen, fmtNum(stars)),
		Rationale: fmt.Sprintf("Contract flexibility %s. Pricing transparency %s/10.", flexLevel, fmtNum(transparency)),
		Pros:      []string{fmt.Sprintf("Rating %s/5", fmtNum(stars))},
		Cons:      cons,
		Metadata:  serviceMetadata(item, level, 90),
	}, nil
}

// ==========================
// Medical
// ==========================

type MedicalCriteria struct {
	SpecialtyNeeds      []string `mapstructure:"specialty_needs"`
	PreferredLanguages  []string `mapstructure:"preferred_languages"`
	WaitTimeSensitivity int      `mapstructure:"wait_time_sensitivity"`
}

type Medical struct {
	base
}

func NewMedical() *Medical {
	return &Medical{base: newBase(MedicalKey, "Medical Providers", validation.NewObjectSchema("MedicalCriteria", map[string]*validation.Property{
		"specialty_needs":       validation.StringList("general"),
		"preferred_languages":   validation.StringList("en"),
		"wait_time_sensitivity": validation.BoundedInteger(5, 0, 10).Describe("7 or more doubles the wait-time penalty."),
	}), nil)}
}

func (p *Medical) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &MedicalCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Medical) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*MedicalCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}

	specialties, err := item.Strings("specialties")
	if err != nil {
		return nil, err
	}
	specialty := model.Clamp(100 - 30*float64(missing(orDefault(c.SpecialtyNeeds, "general"), specialties)))

	langs, err := item.Strings("languages")
	if err != nil {
		return nil, err
	}
	language := 70.0
	if missing(orDefault(c.PreferredLanguages, "en"), langs) == 0 {
		language = 100
	}

	waitDays, err := item.Float("wait_time_days", 5)
	if err != nil {
		return nil, err
	}
	penalty := 1.0
	if c.WaitTimeSensitivity >= 7 {
		penalty = 2
	}
	wait := model.Clamp(100 - waitDays*penalty)

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityHigh)
	if err != nil {
		return nil, err
	}
	availability := fourLevels.score(level, 100)

	raw := math.Min(100, specialty*0.3+language*0.2+wait*0.2+ratingScore*0.2+availability*0.1)

	rationale := fmt.Sprintf("Specialties %s. Wait ~%s days.", model.FormatList(specialties), fmtNum(waitDays))
	if level.Limited() {
		rationale += " Limited availability."
	}
	cons := []string{}
	if waitDays > 7 {
		cons = append(cons, fmt.Sprintf("~%s days wait", fmtNum(waitDays)))
	}
	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"specialty":    specialty,
			"language":     language,
			"wait":         wait,
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — %s, ~%sd wait, %s/5.", item.Name(), model.FormatList(specialties), fmtNum(waitDays), fmtNum(stars)),
		Rationale: rationale,
		Pros:      []string{fmt.Sprintf("Rating %s/5", fmtNum(stars))},
		Cons:      cons,
		Metadata:  serviceMetadata(item, level, 90),
	}, nil
}

// ==========================
// Helpers
// ==========================

func lookupOr(table map[string]float64, key string, def float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

func serviceMetadata(item model.CatalogItem, level model.AvailabilityLevel, confidence int) map[string]interface{} {
	return map[string]interface{}{
		"rating":             rawOr(item, "rating", nil),
		"rating_count":       rawOr(item, "rating_count", nil),
		"availability_level": string(level),
		"confidence":         rawOr(item, "confidence", confidence),
	}
}
