// internal/recommendation/plugins/movers.go
package plugins

import (
	"fmt"
	"math"
	"strings"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const MoversKey = "movers"

type Accommodation struct {
	Type     string  `mapstructure:"type"`
	Bedrooms int     `mapstructure:"bedrooms"`
	Sqm      float64 `mapstructure:"sqm"`
}

type MoverPriorities struct {
	BudgetSensitivity int  `mapstructure:"budget_sensitivity"`
	LanguageSupport   bool `mapstructure:"language_support"`
}

type MoversCriteria struct {
	OriginCity           string             `mapstructure:"origin_city"`
	DestinationCity      string             `mapstructure:"destination_city"`
	MoveType             string             `mapstructure:"move_type"`
	CurrentAccommodation *Accommodation     `mapstructure:"current_accommodation"`
	People               int                `mapstructure:"people"`
	SpecialItems         []string           `mapstructure:"special_items"`
	PackingService       string             `mapstructure:"packing_service"`
	StorageNeeded        bool               `mapstructure:"storage_needed"`
	PreferredMoveWindow  map[string]string  `mapstructure:"preferred_move_window"`
	Priorities           *MoverPriorities   `mapstructure:"priorities"`
	Weights              map[string]float64 `mapstructure:"weights"`
}

var moversWeights = map[string]float64{
	"cost":         0.2,
	"speed":        0.2,
	"reliability":  0.2,
	"services":     0.15,
	"rating":       0.15,
	"availability": 0.1,
}

func moversSchema() *validation.JSONSchema {
	return validation.NewObjectSchema("MoversCriteria", map[string]*validation.Property{
		"origin_city":      validation.String(""),
		"destination_city": validation.String(""),
		"move_type":        validation.String("international").Describe("\"international\" requires international-capable movers."),
		"current_accommodation": validation.Nullable(validation.Object(map[string]*validation.Property{
			"type":     validation.String("apartment").Describe("studio, apartment or house"),
			"bedrooms": validation.NonNegativeInteger(2),
			"sqm":      validation.NonNegativeNumber(80),
		})),
		"people":          validation.BoundedInteger(2, 1, 20),
		"special_items":   validation.StringList(),
		"packing_service": validation.String("partial").Describe("none, partial or full"),
		"storage_needed":  validation.Boolean(false),
		"preferred_move_window": validation.Nullable(validation.MapOf(&validation.Property{Type: "string"})).
			Describe("Earliest/latest move dates; when set, lead time matters."),
		"priorities": validation.Nullable(validation.Object(map[string]*validation.Property{
			"budget_sensitivity": validation.BoundedInteger(5, 0, 10),
			"language_support":   validation.Boolean(false),
		})),
		"weights": weightsSchema(moversWeights),
	})
}

// VolumeEstimate is the estimated shipment size and the truck class it needs.
type VolumeEstimate struct {
	VolumeM3   float64 `json:"volume_m3_estimate"`
	TruckClass string  `json:"suggested_truck_class"`
}

var baseVolumeByType = map[string]float64{"studio": 15, "apartment": 25, "house": 40}

// EstimateVolume sizes a household move from the accommodation, household and special items.
func EstimateVolume(c *MoversCriteria) VolumeEstimate {
	acc := Accommodation{Type: "apartment", Bedrooms: 2, Sqm: 80}
	if c.CurrentAccommodation != nil {
		acc = *c.CurrentAccommodation
	}

	volume, ok := baseVolumeByType[acc.Type]
	if !ok {
		volume = 25
	}
	volume += float64(acc.Bedrooms-1) * 8
	if acc.Sqm > 60 {
		volume += (acc.Sqm - 60) / 10
	}
	volume += float64(c.People-1) * 3

	for _, s := range c.SpecialItems {
		s = strings.ToLower(s)
		switch {
		case strings.Contains(s, "piano") || strings.Contains(s, "grand"):
			volume += 5
		case strings.Contains(s, "bike") || strings.Contains(s, "bicycle"):
			volume += 2
		case strings.Contains(s, "fragile") || strings.Contains(s, "art"):
			volume += 1
		}
	}

	volume = math.Max(5, math.Min(60, math.Round(volume*10)/10))
	truck := "40m3"
	switch {
	case volume <= 12:
		truck = "small van"
	case volume <= 20:
		truck = "20m3"
	}
	return VolumeEstimate{VolumeM3: volume, TruckClass: truck}
}

var moverCostLevels = map[string]float64{"low": 100, "medium": 70, "high": 40}

// Movers ranks moving companies by capacity, lead time, services, cost and reputation.
type Movers struct {
	base
}

func NewMovers() *Movers {
	return &Movers{base: newBase(MoversKey, "Movers", moversSchema(), nil)}
}

func (p *Movers) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &MoversCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Movers) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*MoversCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}
	w := resolveWeights(moversWeights, c.Weights)
	est := EstimateVolume(c)

	maxVol, err := item.Float("max_volume_m3", 20)
	if err != nil {
		return nil, err
	}
	capacity := 100.0
	if maxVol < est.VolumeM3 {
		capacity = model.Clamp(100 * maxVol / est.VolumeM3)
	}
	intl := c.MoveType == "international"
	intlCapable := item.Truthy("international_capable")
	switch {
	case intl && !intlCapable:
		capacity *= 0.3
	case intl && intlCapable:
		capacity = math.Min(100, capacity*1.1)
	}

	leadDays, err := item.Float("typical_lead_days", 14)
	if err != nil {
		return nil, err
	}
	timeline := 100.0
	if len(c.PreferredMoveWindow) > 0 {
		timeline = model.Clamp(math.Max(50, 100-(leadDays-14)))
	}

	services, err := item.Strings("services_supported")
	if err != nil {
		return nil, err
	}
	service := 100.0
	if c.PackingService == "full" && !contains(services, "packing") {
		service = 50
	}
	if c.StorageNeeded && !contains(services, "storage") {
		service *= 0.7
	}

	costLevel, err := item.String("avg_cost_level", "medium")
	if err != nil {
		return nil, err
	}
	sensitivity := 5
	if c.Priorities != nil {
		sensitivity = c.Priorities.BudgetSensitivity
	}
	cost, ok := moverCostLevels[costLevel]
	if !ok {
		cost = 70
	}
	if sensitivity <= 3 {
		cost = 80
	}

	language := 80.0
	if c.Priorities != nil && c.Priorities.LanguageSupport {
		langs, err := item.Strings("languages_supported")
		if err != nil {
			return nil, err
		}
		language = 40
		if len(langs) > 0 {
			language = 100
		}
	}

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityMedium)
	if err != nil {
		return nil, err
	}
	availability := fourLevels.score(level, 75)

	// The cost weight is split evenly between capacity and price; reliability is read from rating.
	raw := w["cost"]*capacity*0.5 + w["cost"]*cost*0.5 +
		w["speed"]*timeline +
		w["reliability"]*ratingScore*0.5 +
		w["services"]*service +
		w["rating"]*ratingScore +
		w["availability"]*availability

	rationale := []string{
		fmt.Sprintf("Volume est. %sm³ → %s.", fmtNum(est.VolumeM3), est.TruckClass),
		fmt.Sprintf("Lead time ~%s days.", fmtNum(leadDays)),
	}
	pros := []string{fmt.Sprintf("Rating %s/5", fmtNum(stars)), fmt.Sprintf("~%s days lead", fmtNum(leadDays))}
	if intl && intlCapable {
		pros = append(pros, "International moves")
	}
	cons := []string{}
	if level.Limited() {
		rationale = append(rationale, fmt.Sprintf("⚠ Scarcity: %s.", parseHorizon(item, 30).phrase("next slot")))
		cons = append(cons, "Limited availability")
	}

	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"capacity_fit": capacity,
			"timeline_fit": timeline,
			"service_fit":  service,
			"cost":         cost,
			"language":     language,
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — %s cost, ~%sd lead, %s/5.", item.Name(), costLevel, fmtNum(leadDays), fmtNum(stars)),
		Rationale: joinSentences(rationale...),
		Pros:      pros,
		Cons:      cons,
		Metadata: map[string]interface{}{
			"rating":                stars,
			"rating_count":          rawOr(item, "rating_count", 0),
			"availability_level":    string(level),
			"next_available_days":   rawOr(item, "next_available_days", nil),
			"confidence":            rawOr(item, "confidence", 85),
			"volume_m3_estimate":    est.VolumeM3,
			"suggested_truck_class": est.TruckClass,
		},
	}, nil
}
