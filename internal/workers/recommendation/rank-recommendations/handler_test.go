// internal/workers/recommendation/rank-recommendations/handler_test.go
package rankrecommendations

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/recommendation/catalog"
	"github.com/rlecomte1929/rolec/internal/recommendation/engine"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
	"github.com/rlecomte1929/rolec/internal/recommendation/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		DefaultTopN: 3,
		MaxTopN:     4,
	}
}

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	eng := engine.New(registry.New(registry.Options{}), catalog.NewBundledSource(), log, engine.Options{})
	return NewHandler(createTestConfig(), eng, log)
}

func intPtr(n int) *int { return &n }

// recordingEngine captures the topN it was called with.
type recordingEngine struct {
	topN int
}

func (r *recordingEngine) Recommend(_ context.Context, category string, _ map[string]interface{}, topN int) (*model.RecommendationResponse, error) {
	r.topN = topN
	return &model.RecommendationResponse{Category: category, TopN: topN, Recommendations: []model.RankedItem{}}, nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "living areas with explicit topN",
			input: &Input{
				Category: "living_areas",
				Criteria: map[string]interface{}{
					"destination_city": "Singapore",
					"budget_monthly":   map[string]interface{}{"min": 3000, "max": 5000},
				},
				TopN: intPtr(2),
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.ResultCount)
				assert.Equal(t, "living_areas", output.Recommendation.Category)
				assert.Equal(t, 100.0, output.Recommendation.Recommendations[0].Score)
			},
		},
		{
			name:  "default topN applies",
			input: &Input{Category: "movers"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 3, output.ResultCount)
				assert.Equal(t, 3, output.Recommendation.TopN)
			},
		},
		{
			name:  "category is trimmed",
			input: &Input{Category: "  banks ", TopN: intPtr(1)},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "banks", output.Recommendation.Category)
				assert.Equal(t, 1, output.ResultCount)
			},
		},
		{
			name:  "criteria echo is redacted",
			input: &Input{Category: "telecom", Criteria: map[string]interface{}{"token": "abc", "note": "x"}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, map[string]interface{}{"note": "x"}, output.Recommendation.CriteriaEcho)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_TopNCap(t *testing.T) {
	rec := &recordingEngine{}
	h := NewHandler(createTestConfig(), rec, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Category: "movers", TopN: intPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.topN)

	_, err = h.Execute(context.Background(), &Input{Category: "movers", TopN: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.topN)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{name: "nil input", input: nil, wantCode: apperrors.ErrCodeInputValidationFailed},
		{name: "missing category", input: &Input{}, wantCode: apperrors.ErrCodeInputValidationFailed},
		{name: "unknown category", input: &Input{Category: "nonexistent"}, wantCode: apperrors.ErrCodeUnknownCategory},
		{name: "negative topN", input: &Input{Category: "movers", TopN: intPtr(-2)}, wantCode: apperrors.ErrCodeInvalidCriteria},
		{
			name:     "invalid criteria",
			input:    &Input{Category: "living_areas", Criteria: map[string]interface{}{"bedrooms": "two"}},
			wantCode: apperrors.ErrCodeInvalidCriteria,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.True(t, apperrors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestInput_JSON(t *testing.T) {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"category":"schools","criteria":{"child_ages":[7]},"topN":5}`), &input))
	assert.Equal(t, "schools", input.Category)
	require.NotNil(t, input.TopN)
	assert.Equal(t, 5, *input.TopN)

	var noTopN Input
	require.NoError(t, json.Unmarshal([]byte(`{"category":"schools"}`), &noTopN))
	assert.Nil(t, noTopN.TopN)
}

// ==========================
// Job Handling Tests
// ==========================

// unencodableEngine returns a response the job client cannot serialize.
type unencodableEngine struct{}

func (unencodableEngine) Recommend(_ context.Context, category string, _ map[string]interface{}, topN int) (*model.RecommendationResponse, error) {
	return &model.RecommendationResponse{
		Category:     category,
		TopN:         topN,
		CriteriaEcho: map[string]interface{}{"callback": make(chan int)},
	}, nil
}

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  string
	}{
		{name: "completes ranked job", variables: `{"category":"movers","topN":2}`},
		{name: "unknown category throws", variables: `{"category":"nonexistent"}`, wantCode: "UNKNOWN_CATEGORY"},
		{name: "malformed variables throw", variables: `{"category":`, wantCode: "INPUT_VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &gatewayStub{}
			createTestHandler(t).Handle(jobClientStub{gw: gw}, newJob(tt.variables))

			if tt.wantCode != "" {
				require.NotNil(t, gw.thrown)
				assert.Nil(t, gw.completed)
				assert.Equal(t, tt.wantCode, gw.thrown.ErrorCode)
				return
			}

			require.NotNil(t, gw.completed)
			assert.Equal(t, int64(7), gw.completed.JobKey)
			var out Output
			require.NoError(t, json.Unmarshal([]byte(gw.completed.Variables), &out))
			require.NotNil(t, out.Recommendation)
			assert.Equal(t, "movers", out.Recommendation.Category)
			assert.Equal(t, 2, out.ResultCount)
		})
	}
}

func TestHandler_Handle_UnencodableOutputFailsJob(t *testing.T) {
	gw := &gatewayStub{}
	h := NewHandler(createTestConfig(), unencodableEngine{}, logger.NewTestLogger(t))

	h.Handle(jobClientStub{gw: gw}, newJob(`{"category":"movers"}`))

	assert.Nil(t, gw.completed)
	require.NotNil(t, gw.failed)
	assert.Equal(t, int32(2), gw.failed.Retries)
	assert.Equal(t, "Internal error", gw.failed.ErrorMessage)
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.DefaultTopN)
	assert.Equal(t, 50, cfg.MaxTopN)
}
