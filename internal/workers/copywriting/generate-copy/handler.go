// internal/workers/copywriting/generate-copy/handler.go
package generatecopy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/common/metrics"
	"betfunnels-copy/internal/common/validation"
	"betfunnels-copy/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-copy"

type Generator interface {
	Generate(ctx context.Context, spec *models.FunnelSpec) (*models.GenerationResult, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	generator    Generator
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Generator    Generator
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for generate-copy: %w", err)
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("generate-copy: generator is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       log,
		generator:    opts.Generator,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})
	ctx = logger.IntoContext(ctx, log)
	log.Info("processing generate-copy job", nil)

	input, err := h.parseInput(job)
	if err != nil {
		return h.fail(client, job, err)
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		return h.fail(client, job, err)
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return h.fail(client, job, errors.NewInternalError(err))
	}
	reportCtx, cancelReport := h.reportContext()
	defer cancelReport()
	if _, err := cmd.Send(reportCtx); err != nil {
		log.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	log.Info("generate-copy job completed", map[string]interface{}{
		"casino":     output.Casino,
		"durationMs": time.Since(startTime).Milliseconds(),
	})
	return nil
}

// Execute runs the same validation and generation as the HTTP endpoint.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	spec := &input.FunnelSpec
	spec.Normalize(h.config.DayCount)

	if res := validation.ValidateSpec(spec, h.config.DayCount); !res.Valid {
		return nil, res.AsError(false)
	}

	result, err := h.generator.Generate(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &Output{CopyAll: result.CopyAll, Casino: result.MatchedCasino}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.GetVariables())

	res, err := validation.ValidateDocument(raw)
	if err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}
	if !res.Valid {
		return nil, res.AsError(true)
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}
	return &input, nil
}

// fail reports on its own context; the job context is usually already done
// when the generation timed out.
func (h *Handler) fail(client worker.JobClient, job entities.Job, err error) error {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()

	reportCtx, cancel := h.reportContext()
	defer cancel()
	h.errorHandler.HandleJobError(reportCtx, client, job, stdErr)
	return nil
}

func (h *Handler) reportContext() (context.Context, context.CancelFunc) {
	timeout := h.config.ReportTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ReportTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
