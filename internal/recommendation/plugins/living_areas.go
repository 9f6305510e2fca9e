// internal/recommendation/plugins/living_areas.go
package plugins

import (
	"fmt"
	"math"
	"strings"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const LivingAreasKey = "living_areas"

// BudgetRange is published as {min, max}; min_val and max_val are accepted too.
type BudgetRange struct {
	MinVal int `mapstructure:"min"`
	MaxVal int `mapstructure:"max"`
}

type CommutePreference struct {
	Address    string `mapstructure:"address"`
	MaxMinutes int    `mapstructure:"max_minutes"`
	Mode       string `mapstructure:"mode"`
}

type LivingAreasCriteria struct {
	DestinationCity     string             `mapstructure:"destination_city"`
	BudgetMonthly       BudgetRange        `mapstructure:"budget_monthly"`
	Bedrooms            int                `mapstructure:"bedrooms"`
	SqmMin              int                `mapstructure:"sqm_min"`
	CommuteWork         *CommutePreference `mapstructure:"commute_work"`
	CommuteSchool       *CommutePreference `mapstructure:"commute_school"`
	LifestylePriorities map[string]int     `mapstructure:"lifestyle_priorities"`
	PreferredAreas      []string           `mapstructure:"preferred_areas"`
	AvoidAreas          []string           `mapstructure:"avoid_areas"`
	Weights             map[string]float64 `mapstructure:"weights"`
}

var livingAreasWeights = map[string]float64{
	"budget":       0.25,
	"commute":      0.25,
	"space":        0.15,
	"lifestyle":    0.15,
	"rating":       0.1,
	"availability": 0.1,
}

var lifestyleAxes = []string{"safety", "nightlife", "quiet", "green"}

const (
	defaultCommuteMaxMinutes = 45
	neutralLifestyle         = 80.0
)

func commuteSchema() *validation.Property {
	return validation.Nullable(validation.Object(map[string]*validation.Property{
		"address":     validation.String(""),
		"max_minutes": validation.NonNegativeInteger(defaultCommuteMaxMinutes),
		"mode":        validation.String("transit"),
	}))
}

func livingAreasSchema() *validation.JSONSchema {
	return validation.NewObjectSchema("LivingAreasCriteria", map[string]*validation.Property{
		"destination_city": validation.String("Singapore"),
		"budget_monthly": validation.Object(map[string]*validation.Property{
			"min": validation.NonNegativeInteger(2000),
			"max": validation.NonNegativeInteger(5000),
		}).Describe("Monthly rent band. min_val and max_val are accepted as aliases of min and max."),
		"bedrooms":       validation.NonNegativeInteger(2),
		"sqm_min":        validation.NonNegativeInteger(65),
		"commute_work":   commuteSchema(),
		"commute_school": commuteSchema(),
		"lifestyle_priorities": validation.Nullable(validation.MapOf(validation.Bounded("integer", 0, 10))).
			Describe("Priority per lifestyle axis (safety, nightlife, quiet, green), 0-10; unspecified axes count as 5."),
		"preferred_areas": validation.StringList(),
		"avoid_areas":     validation.StringList(),
		"weights":         weightsSchema(livingAreasWeights),
	})
}

// LivingAreas ranks neighbourhoods by rent, commute, space, lifestyle, rating and availability.
type LivingAreas struct {
	base
}

func NewLivingAreas() *LivingAreas {
	return &LivingAreas{base: newBase(LivingAreasKey, "Living Areas", livingAreasSchema(), map[string]string{
		"budget_monthly.min_val": "budget_monthly.min",
		"budget_monthly.max_val": "budget_monthly.max",
	})}
}

func (p *LivingAreas) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &LivingAreasCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *LivingAreas) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*LivingAreasCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}
	w := resolveWeights(livingAreasWeights, c.Weights)

	city, err := item.String("city", "")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(city, c.DestinationCity) {
		return wrongCity(city, c.DestinationCity), nil
	}

	rent, err := p.rent(c, item)
	if err != nil {
		return nil, err
	}
	bMin, bMax := float64(c.BudgetMonthly.MinVal), float64(c.BudgetMonthly.MaxVal)
	budget := 100.0
	switch {
	case rent > bMax:
		budget = model.Clamp(100 - 20*(rent-bMax)/1000)
	case rent < bMin:
		budget = 90
	}

	commuteMins, err := item.Float("commute_to_work_minutes_estimate", 30)
	if err != nil {
		return nil, err
	}
	maxMins := float64(defaultCommuteMaxMinutes)
	if c.CommuteWork != nil {
		maxMins = float64(c.CommuteWork.MaxMinutes)
	}
	commute := 100.0
	if commuteMins > maxMins {
		commute = model.Clamp(100 - (commuteMins-maxMins)*3)
	}

	sqmRange, err := item.Floats("typical_sqm_range")
	if err != nil {
		return nil, err
	}
	itemSqm := 60.0
	if len(sqmRange) > 0 {
		itemSqm = sqmRange[0]
	}
	space := 100.0
	if itemSqm < float64(c.SqmMin) {
		space = model.Clamp(100 * itemSqm / float64(c.SqmMin))
	}

	tags, err := item.FloatMap("tags")
	if err != nil {
		return nil, err
	}
	lifestyle := neutralLifestyle
	if len(tags) > 0 {
		diff := 0.0
		for _, axis := range lifestyleAxes {
			diff += math.Abs(tagOr(tags, axis, 5) - float64(priorityOr(c.LifestylePriorities, axis, 5)))
		}
		lifestyle = model.Clamp(100 - diff*3)
	}

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}
	level, err := item.Level("availability_level", model.AvailabilityMedium)
	if err != nil {
		return nil, err
	}
	availability := fourLevels.score(level, 50)

	raw := w["budget"]*budget +
		w["commute"]*commute +
		w["space"]*space +
		w["lifestyle"]*lifestyle +
		w["rating"]*ratingScore +
		w["availability"]*availability

	verdict := "within"
	switch {
	case rent > bMax:
		verdict = "above"
	case rent < bMin:
		verdict = "below"
	}
	rationale := []string{
		fmt.Sprintf("Budget: %s your range.", verdict),
		fmt.Sprintf("Commute ~%s min.", fmtNum(commuteMins)),
		fmt.Sprintf("Lifestyle: safety %s, green %s.", fmtNum(tagOr(tags, "safety", 7)), fmtNum(tagOr(tags, "green", 6))),
	}
	pros := []string{fmt.Sprintf("Rating %s/5", fmtNum(stars)), fmt.Sprintf("~%s min commute", fmtNum(commuteMins))}
	if rent <= bMax {
		pros = append(pros, fmt.Sprintf("Within budget (SGD %s/mo)", fmtNum(rent)))
	}
	cons := []string{}
	if level.Limited() {
		rationale = append(rationale, fmt.Sprintf("⚠ Scarcity: %s.", parseHorizon(item, 30).phrase("next available in")))
		cons = append(cons, "Limited availability")
	}
	if rent > bMax {
		cons = append(cons, "Above budget")
	}

	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"budget":       budget,
			"commute":      commute,
			"space":        space,
			"lifestyle":    lifestyle,
			"rating":       ratingScore,
			"availability": availability,
		},
		Summary:   fmt.Sprintf("%s — SGD %s/mo, ~%s min commute, %s/5.", item.Name(), fmtNum(rent), fmtNum(commuteMins), fmtNum(stars)),
		Rationale: joinSentences(rationale...),
		Pros:      pros,
		Cons:      cons,
		Metadata: map[string]interface{}{
			"rating":              stars,
			"rating_count":        rawOr(item, "rating_count", 0),
			"availability_level":  string(level),
			"next_available_days": rawOr(item, "next_available_days", nil),
			"confidence":          rawOr(item, "confidence", 80),
		},
	}, nil
}

// rent picks the 2-bedroom figure for small households and the 3-bedroom figure otherwise.
func (p *LivingAreas) rent(c *LivingAreasCriteria, item model.CatalogItem) (float64, error) {
	if c.Bedrooms <= 2 {
		return item.RequiredFloat("avg_rent_2br")
	}
	if item.Has("avg_rent_3br") {
		return item.Float("avg_rent_3br", 0)
	}
	return item.Float("avg_rent_2br", 3000)
}

func wrongCity(city, want string) *model.ScoreResult {
	return &model.ScoreResult{
		RawScore:  0,
		Breakdown: map[string]float64{},
		Summary:   "Wrong city",
		Rationale: fmt.Sprintf("Area is in %s, not %s.", city, want),
		Pros:      []string{},
		Cons:      []string{"Wrong city"},
		Metadata:  map[string]interface{}{},
	}
}

func tagOr(tags map[string]float64, key string, def float64) float64 {
	if v, ok := tags[key]; ok {
		return v
	}
	return def
}

func priorityOr(prio map[string]int, key string, def int) int {
	if v, ok := prio[key]; ok {
		return v
	}
	return def
}
