// internal/recommendation/plugins/schools.go
package plugins

import (
	"fmt"
	"time"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const SchoolsKey = "schools"

type SchoolsCriteria struct {
	ChildAges             []int              `mapstructure:"child_ages"`
	Curriculum            string             `mapstructure:"curriculum"`
	LanguageOfInstruction []string           `mapstructure:"language_of_instruction"`
	SchoolType            string             `mapstructure:"school_type"`
	BudgetLevel           string             `mapstructure:"budget_level"`
	SpecialNeedsSupport   bool               `mapstructure:"special_needs_support"`
	Priorities            map[string]int     `mapstructure:"priorities"`
	CommuteMaxMinutes     int                `mapstructure:"commute_max_minutes"`
	TargetStartDate       string             `mapstructure:"target_start_date"`
	Flexibility           string             `mapstructure:"flexibility"`
	Weights               map[string]float64 `mapstructure:"weights"`
}

var schoolsWeights = map[string]float64{
	"fit":          0.25,
	"quality":      0.2,
	"language":     0.15,
	"commute":      0.15,
	"availability": 0.15,
	"rating":       0.1,
}

var tuitionUSD = map[string]float64{"high": 45000, "medium": 28000, "low": 15000}

const (
	// sgdToUSD converts catalog tuition figures to the USD estimate shown to callers.
	sgdToUSD          = 0.74
	longWaitlistWeeks = 20
)

func schoolsSchema() *validation.JSONSchema {
	return validation.NewObjectSchema("SchoolsCriteria", map[string]*validation.Property{
		"child_ages":              validation.IntegerList(validation.Bounded("integer", 0, 25), 8),
		"curriculum":              validation.String("international").Describe("Curriculum name, or \"either\" for no preference."),
		"language_of_instruction": validation.StringList("en"),
		"school_type":             validation.String("either").Describe("private, public or either"),
		"budget_level":            validation.String("medium"),
		"special_needs_support":   validation.Boolean(false),
		"priorities": validation.Nullable(validation.MapOf(validation.Bounded("integer", 0, 10))).
			Describe("academics (default 7) and extracurricular (default 6), 0-10."),
		"commute_max_minutes": validation.NonNegativeInteger(45),
		"target_start_date":   validation.Nullable(validation.String("")).WithDefault(nil).Describe("YYYY-MM-DD"),
		"flexibility":         validation.String("flexible"),
		"weights":             weightsSchema(schoolsWeights),
	})
}

// StartDate is a parsed target start date. Provided is false when the caller sent none;
// Known is false when the value could not be parsed.
type StartDate struct {
	Raw      string
	Date     time.Time
	Provided bool
	Known    bool
}

// ParseStartDate reads the leading YYYY-MM-DD of s.
func ParseStartDate(s string) StartDate {
	if s == "" {
		return StartDate{}
	}
	sd := StartDate{Raw: s, Provided: true}
	head := s
	if len(head) > 10 {
		head = head[:10]
	}
	d, err := time.Parse("2006-01-02", head)
	if err != nil {
		return sd
	}
	sd.Date = d
	sd.Known = true
	return sd
}

// Schools ranks schools by grade/curriculum fit, quality, language, commute and admissions.
type Schools struct {
	base
	now func() time.Time
}

// NewSchools takes the clock used to measure time until the target start date.
func NewSchools(now func() time.Time) *Schools {
	if now == nil {
		now = time.Now
	}
	return &Schools{base: newBase(SchoolsKey, "Schools", schoolsSchema(), nil), now: now}
}

func (p *Schools) ParseCriteria(payload map[string]interface{}) (model.Criteria, error) {
	c := &SchoolsCriteria{}
	if err := p.decoder.Decode(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func ageToGrade(age int) int {
	if age < 5 {
		return 0
	}
	return age - 5
}

func (p *Schools) Score(criteria model.Criteria, item model.CatalogItem) (*model.ScoreResult, error) {
	c, err := criteriaAs[*SchoolsCriteria](p.key, criteria)
	if err != nil {
		return nil, err
	}
	w := resolveWeights(schoolsWeights, c.Weights)

	ages := c.ChildAges
	if len(ages) == 0 {
		ages = []int{8}
	}
	grades := make([]int, len(ages))
	for i, a := range ages {
		grades[i] = ageToGrade(a)
	}

	supported := []float64{0, 18}
	if item.Has("grades_supported") {
		if supported, err = item.Floats("grades_supported"); err != nil {
			return nil, err
		}
		if len(supported) < 2 {
			return nil, fmt.Errorf("%w: attribute \"grades_supported\": need [min, max], got %v", model.ErrUnscoreable, supported)
		}
	}
	ageFit := 100.0
	for _, g := range grades {
		if float64(g) < supported[0] || float64(g) > supported[1] {
			ageFit = 40
			break
		}
	}

	curriculum, err := item.String("curriculum", "international")
	if err != nil {
		return nil, err
	}
	curriculumFit := 30.0
	if c.Curriculum == "either" || curriculum == c.Curriculum {
		curriculumFit = 100
	}

	langs, err := item.Strings("languages")
	if err != nil {
		return nil, err
	}
	languageFit := 60.0
	if missing(orDefault(c.LanguageOfInstruction, "en"), langs) == 0 {
		languageFit = 100
	}

	schoolType, err := item.String("type", "private")
	if err != nil {
		return nil, err
	}
	typeFit := 30.0
	if c.SchoolType == "either" || schoolType == c.SchoolType {
		typeFit = 100
	}

	quality, err := item.Float("quality_score", 6)
	if err != nil {
		return nil, err
	}
	extra, err := item.Float("extracurricular_score", 6)
	if err != nil {
		return nil, err
	}
	academics := float64(priorityOr(c.Priorities, "academics", 7))
	extracurricular := float64(priorityOr(c.Priorities, "extracurricular", 6))
	qualityScore := model.Clamp((quality*academics/10 + extra*extracurricular/10) * 5)

	commuteMins, err := item.Float("commute_minutes_estimate", 25)
	if err != nil {
		return nil, err
	}
	commuteFit := model.Clamp(100 - (commuteMins-float64(c.CommuteMaxMinutes))*2)

	level, err := item.Level("seats_availability_level", model.AvailabilityMedium)
	if err != nil {
		return nil, err
	}
	waitlist, err := item.Float("waitlist_weeks", 12)
	if err != nil {
		return nil, err
	}
	availability := 80.0
	switch level {
	case model.AvailabilityScarce:
		availability = 40
	case model.AvailabilityLow:
		availability = 55
	}
	start := ParseStartDate(c.TargetStartDate)
	if start.Known && waitlist > longWaitlistWeeks && p.weeksUntil(start.Date) < waitlist {
		availability *= 0.7
	}

	stars, ratingScore, err := rating(item)
	if err != nil {
		return nil, err
	}

	raw := w["fit"]*(ageFit*0.4+curriculumFit*0.3+typeFit*0.3) +
		w["quality"]*qualityScore +
		w["language"]*languageFit +
		w["commute"]*commuteFit +
		w["availability"]*availability +
		w["rating"]*ratingScore

	rationale := []string{
		fmt.Sprintf("Ages %v → grades %v.", ages, grades),
		fmt.Sprintf("Curriculum %s, %s.", curriculum, schoolType),
		fmt.Sprintf("Commute ~%s min.", fmtNum(commuteMins)),
	}
	cons := []string{}
	if level.Limited() {
		rationale = append(rationale, fmt.Sprintf("⚠ Admissions scarcity: waitlist ~%s weeks.", fmtNum(waitlist)))
		cons = append(cons, fmt.Sprintf("Waitlist ~%s weeks", fmtNum(waitlist)))
	}
	if start.Provided && !start.Known {
		rationale = append(rationale, fmt.Sprintf("Target start date %q unavailable; waitlist timing not assessed.", start.Raw))
	}
	if deadline, _ := item.String("application_deadline", ""); deadline != "" {
		rationale = append(rationale, fmt.Sprintf("Application deadline %s.", deadline))
	}

	tuitionLevel, _ := item.String("tuition_level", "medium")
	tuition, ok := tuitionUSD[tuitionLevel]
	if !ok {
		tuition = tuitionUSD["medium"]
	}
	city, _ := item.String("city", "Singapore")

	return &model.ScoreResult{
		RawScore: raw,
		Breakdown: map[string]float64{
			"age_fit":        ageFit,
			"curriculum_fit": curriculumFit,
			"language_fit":   languageFit,
			"quality":        qualityScore,
			"commute":        commuteFit,
			"availability":   availability,
			"rating":         ratingScore,
		},
		Summary:   fmt.Sprintf("%s — %s, %s, ~%s min, %s/5.", item.Name(), curriculum, schoolType, fmtNum(commuteMins), fmtNum(stars)),
		Rationale: joinSentences(rationale...),
		Pros:      []string{fmt.Sprintf("Rating %s/5", fmtNum(stars)), fmt.Sprintf("Quality %s/10", fmtNum(quality))},
		Cons:      cons,
		Metadata: map[string]interface{}{
			"rating":             stars,
			"rating_count":       rawOr(item, "rating_count", 0),
			"availability_level": string(level),
			"waitlist_weeks":     waitlist,
			"confidence":         rawOr(item, "confidence", 85),
			"estimated_cost_usd": int(tuition * sgdToUSD),
			"cost_type":          "annual",
			"map_query":          fmt.Sprintf("%s, %s", item.Name(), city),
		},
	}, nil
}

// weeksUntil is zero for dates that are today or past.
func (p *Schools) weeksUntil(target time.Time) float64 {
	now := p.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !target.After(today) {
		return 0
	}
	return target.Sub(today).Hours() / 24 / 7
}
