// internal/workers/recommendation/describe-categories/handler.go
package describecategories

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
	TaskType = "describe-categories"
)

// Describer exposes category discovery. *engine.Engine satisfies it.
type Describer interface {
	ListCategories() []model.CategoryInfo
	Describe(category string) (model.CategoryInfo, error)
}

type Handler struct {
	config       *Config
	describer    Describer
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, describer Describer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		describer:    describer,
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
	if job.Variables != "" {
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			h.fail(ctx, client, job, timer, apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
			return
		}
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	category := ""
	if input != nil {
		category = strings.TrimSpace(input.Category)
	}

	if category == "" {
		return &Output{Categories: h.describer.ListCategories()}, nil
	}

	info, err := h.describer.Describe(category)
	if err != nil {
		return nil, err
	}
	return &Output{CategoryInfo: &info}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode output: %w", err))
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
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
