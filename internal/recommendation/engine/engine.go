// Package engine runs the ranking pipeline: resolve the category scorer, validate criteria, load
// the catalog, score every item, normalize, tier, stable-sort and truncate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/common/metrics"
	"github.com/rlecomte1929/rolec/internal/common/observability"
	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/catalog"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const (
	// DefaultTopN applies when a caller does not ask for a size.
	DefaultTopN          = 10
	defaultSlowThreshold = 500 * time.Millisecond
	timestampLayout      = "2006-01-02T15:04:05Z"
	outcomeOK            = "ok"
)

// Plugins resolves category scorers. *registry.Registry satisfies it.
type Plugins interface {
	Get(category string) (model.Plugin, bool)
	ListCategories() []model.CategoryInfo
}

// Options tunes an Engine. Zero values pick defaults.
type Options struct {
	// CatalogTimeout bounds a single dataset load. Zero disables the bound.
	CatalogTimeout time.Duration
	// SlowThreshold is the latency above which a request is logged at Warn.
	SlowThreshold time.Duration
	Observability *observability.Observability
	Clock         func() time.Time
	NewRequestID  func() string
}

// Engine is stateless across requests and safe for concurrent use.
type Engine struct {
	plugins Plugins
	catalog catalog.Source
	logger  logger.Logger
	opts    Options
}

func New(plugins Plugins, source catalog.Source, log logger.Logger, opts Options) *Engine {
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = defaultSlowThreshold
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = func() string { return uuid.New().String() }
	}
	return &Engine{
		plugins: plugins,
		catalog: source,
		logger:  log.WithFields(map[string]interface{}{"component": "ranking-engine"}),
		opts:    opts,
	}
}

// scored pairs a catalog item with its verdict until normalization.
type scored struct {
	item   model.CatalogItem
	result *model.ScoreResult
}

// Recommend ranks the category's catalog against payload and returns at most topN items.
func (e *Engine) Recommend(ctx context.Context, category string, payload map[string]interface{}, topN int) (resp *model.RecommendationResponse, err error) {
	start := time.Now()
	requestID := e.opts.NewRequestID()
	log := e.logger.WithFields(map[string]interface{}{"category": category, "requestId": requestID})

	ctx, endSpan := observability.StartSpan(ctx, "recommend",
		attribute.String("category", category),
		attribute.Int("top_n", topN),
	)
	defer func() {
		endSpan(err)
		e.record(ctx, category, err, time.Since(start), resp)
	}()

	plugin, ok := e.plugins.Get(category)
	if !ok {
		return nil, apperrors.NewUnknownCategoryError(category)
	}

	if topN < 0 {
		return nil, apperrors.NewInvalidCriteriaError(category, []apperrors.FieldViolation{{
			Field:   "topN",
			Message: fmt.Sprintf("must be >= 0, got %d", topN),
			Code:    "OUT_OF_RANGE",
		}})
	}

	criteria, err := plugin.ParseCriteria(payload)
	if err != nil {
		return nil, err
	}

	items, err := e.loadDataset(ctx, plugin.Dataset())
	if err != nil {
		return nil, err
	}

	candidates := make([]scored, 0, len(items))
	excluded := 0
	for _, item := range items {
		result, scoreErr := scoreItem(plugin, criteria, item)
		if scoreErr != nil {
			excluded++
			log.Warn("excluding unscoreable item", map[string]interface{}{
				"itemId":      item.ID(),
				"error":       scoreErr.Error(),
				"unscoreable": errors.Is(scoreErr, model.ErrUnscoreable),
			})
			continue
		}
		candidates = append(candidates, scored{item: item, result: result})
	}
	if excluded > 0 {
		metrics.ItemsExcluded.WithLabelValues(category).Add(float64(excluded))
	}

	ranked := rank(candidates)
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}

	resp = &model.RecommendationResponse{
		RequestID:       requestID,
		Category:        category,
		GeneratedAt:     e.opts.Clock().UTC().Format(timestampLayout),
		TopN:            topN,
		CriteriaEcho:    Redact(payload),
		Recommendations: ranked,
	}

	elapsed := time.Since(start)
	fields := map[string]interface{}{
		"candidates": len(items),
		"scored":     len(candidates),
		"excluded":   excluded,
		"returned":   len(ranked),
		"durationMs": elapsed.Milliseconds(),
	}
	log.Info("ranking completed", fields)
	if elapsed > e.opts.SlowThreshold {
		log.Warn("slow ranking request", fields)
	}
	return resp, nil
}

// ListCategories describes every registered category.
func (e *Engine) ListCategories() []model.CategoryInfo {
	return e.plugins.ListCategories()
}

// Describe returns one category's key, title and criteria schema.
func (e *Engine) Describe(category string) (model.CategoryInfo, error) {
	p, ok := e.plugins.Get(category)
	if !ok {
		return model.CategoryInfo{}, apperrors.NewUnknownCategoryError(category)
	}
	return model.CategoryInfo{Key: p.Key(), Title: p.Title(), Schema: p.Schema()}, nil
}

// GetCriteriaSchema returns the JSON Schema used to validate a category's criteria.
func (e *Engine) GetCriteriaSchema(category string) (*validation.JSONSchema, error) {
	info, err := e.Describe(category)
	if err != nil {
		return nil, err
	}
	return info.Schema, nil
}

func (e *Engine) loadDataset(ctx context.Context, dataset string) (items []model.CatalogItem, err error) {
	start := time.Now()
	ctx, endSpan := observability.StartSpan(ctx, "catalog.load", attribute.String("dataset", dataset))
	defer func() {
		endSpan(err)
		metrics.CatalogLoadDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	}()

	if e.opts.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CatalogTimeout)
		defer cancel()
	}

	items, err = e.catalog.LoadDataset(ctx, dataset)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewCatalogTimeoutError(dataset)
	default:
		return nil, apperrors.NewCatalogLoadError(dataset, err)
	}
}

// scoreItem turns scorer panics and non-finite scores into unscoreable verdicts.
func scoreItem(p model.Plugin, c model.Criteria, item model.CatalogItem) (result *model.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: scorer panic: %v", model.ErrUnscoreable, r)
		}
	}()

	result, err = p.Score(c, item)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: scorer returned no result", model.ErrUnscoreable)
	}
	if math.IsNaN(result.RawScore) || math.IsInf(result.RawScore, 0) {
		return nil, fmt.Errorf("%w: non-finite raw score %v", model.ErrUnscoreable, result.RawScore)
	}
	return result, nil
}

// rank normalizes, tiers and stable-sorts the scored items. Equal scores keep catalog order.
func rank(candidates []scored) []model.RankedItem {
	raw := make([]float64, len(candidates))
	for i, c := range candidates {
		raw[i] = c.result.RawScore
	}
	normalized := model.Normalize(raw)

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return normalized[order[a]] > normalized[order[b]]
	})

	out := make([]model.RankedItem, len(candidates))
	for pos, idx := range order {
		out[pos] = toRankedItem(candidates[idx], normalized[idx])
	}
	return out
}

func toRankedItem(c scored, normalized float64) model.RankedItem {
	r := c.result
	metadata := r.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if level, ok := metadata["availability_level"]; !ok || level == nil || level == "" {
		metadata["availability_level"] = string(model.AvailabilityHigh)
	}

	return model.RankedItem{
		ItemID:    c.item.ID(),
		Name:      c.item.Name(),
		Score:     model.RoundScore(normalized),
		Tier:      model.TierFor(normalized),
		Summary:   r.Summary,
		Rationale: r.Rationale,
		Breakdown: orEmptyBreakdown(r.Breakdown),
		Pros:      orEmptyList(r.Pros),
		Cons:      orEmptyList(r.Cons),
		Metadata:  metadata,
	}
}

func (e *Engine) record(ctx context.Context, category string, err error, elapsed time.Duration, resp *model.RecommendationResponse) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(apperrors.Normalize(err).Code)
	}
	label := category
	if _, ok := e.plugins.Get(category); !ok {
		label = "unknown"
	}

	returned := 0
	if resp != nil {
		returned = len(resp.Recommendations)
	}
	metrics.RecommendationRequests.WithLabelValues(label, outcome).Inc()
	metrics.RecommendationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	e.opts.Observability.RecordRequest(ctx, label, outcome, elapsed, returned)
}

func orEmptyList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyBreakdown(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
