// internal/workers/recommendation/rank-recommendations/handler.go
package rankrecommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/common/metrics"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const (
	TaskType = "rank-recommendations"
)

// Recommender is the ranking operation the worker exposes. *engine.Engine satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, category string, payload map[string]interface{}, topN int) (*model.RecommendationResponse, error)
}

type Handler struct {
	config       *Config
	engine       Recommender
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, engine Recommender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		logger:       scoped,
		errorHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, timer, apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, timer, err)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.fail(ctx, client, job, timer, err)
		return
	}
	timer.Done("")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInputValidationError("input cannot be nil")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, apperrors.NewInputValidationError("category is required")
	}

	topN := h.config.DefaultTopN
	if input.TopN != nil {
		topN = *input.TopN
	}
	if h.config.MaxTopN > 0 && topN > h.config.MaxTopN {
		h.logger.Debug("capping topN", map[string]interface{}{"requested": topN, "max": h.config.MaxTopN})
		topN = h.config.MaxTopN
	}

	resp, err := h.engine.Recommend(ctx, category, input.Criteria, topN)
	if err != nil {
		return nil, err
	}

	return &Output{
		Recommendation: resp,
		ResultCount:    len(resp.Recommendations),
	}, nil
}

// completeJob returns an error only when the output cannot be encoded; a rejected send is logged.
func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode output: %w", err))
	}
	_, err = cmd.Send(ctx)
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	timer.Done(string(apperrors.Normalize(err).Code))
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
