// internal/workers/extraction/extract-unit-mix/handler.go
package extractunitmix

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"listing-unitmix/internal/common/database"
	"listing-unitmix/internal/common/errors"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/common/metrics"
	"listing-unitmix/internal/common/observability"
	"listing-unitmix/internal/common/validation"
	"listing-unitmix/internal/models"
)

const (
	TaskType = "extract-unit-mix"

	// cacheKeyPrefix is versioned so a change in resolution rules can retire
	// every cached mix at once.
	cacheKeyPrefix = "unitmix:extraction:v1:"
)

// MixExtractor is the pipeline entry point. *extractor.Extractor satisfies it.
type MixExtractor interface {
	Extract(ctx context.Context, listing models.ListingMetadata) (*models.ExtractionResult, error)
}

// Cache stores finished extractions. *database.RedisClient satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type Handler struct {
	config       *Config
	extractor    MixExtractor
	cache        Cache
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

type HandlerOptions struct {
	Config        *Config
	Extractor     MixExtractor
	Cache         Cache // optional
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("extract-unit-mix: extractor is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for extract-unit-mix: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		extractor:    opts.Extractor,
		cache:        opts.Cache,
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.failJob(ctx, client, job, errors.NewJobCompleteFailedError(err))
		return
	}

	duration := time.Since(startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, duration, "completed")
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewParseError(fmt.Errorf("validation errors: %v", result.GetErrorMessages()))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

// Execute returns the cached mix for an identical listing or runs the
// pipeline and caches the result. Cache failures are logged and skipped, and
// results degraded by an unavailable LLM fallback are never cached.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	runID := uuid.NewString()
	log := h.logger.With(map[string]interface{}{
		"runId":     runID,
		"listingId": input.ListingID,
	})

	key := CacheKey(input.Listing)
	if cached, ok := h.lookup(ctx, key, log); ok {
		log.Info("unit mix served from cache", map[string]interface{}{
			"source": string(cached.MixResolution.Source),
		})
		return &Output{ListingID: input.ListingID, RunID: runID, Extraction: cached, Cached: true}, nil
	}

	ctx, span := observability.StartSpan(ctx, "worker."+TaskType)
	defer span.End()

	result, err := h.extractor.Extract(ctx, input.Listing)
	if err != nil {
		return nil, err
	}

	h.record(ctx, result)
	if cacheable(result) {
		h.store(ctx, key, result, log)
	} else {
		log.Info("degraded extraction not cached", map[string]interface{}{
			"flags": result.MixResolution.Flags,
		})
	}

	return &Output{ListingID: input.ListingID, RunID: runID, Extraction: result}, nil
}

// cacheable reports whether result may be served to later identical
// listings. A mix built while the LLM fallback was unavailable is not.
func cacheable(result *models.ExtractionResult) bool {
	for _, f := range result.MixResolution.Flags {
		if f == models.FlagLLMFallbackUnavailable {
			return false
		}
	}
	return true
}

// CacheKey identifies a listing by the hash of its canonical JSON form.
func CacheKey(listing models.ListingMetadata) string {
	data, _ := json.Marshal(listing)
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (h *Handler) lookup(ctx context.Context, key string, log logger.Logger) (*models.ExtractionResult, bool) {
	if h.cache == nil {
		return nil, false
	}

	var result models.ExtractionResult
	err := h.cache.GetJSON(ctx, key, &result)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &result, true
	case stderrors.Is(err, database.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		cacheErr := errors.NewCacheUnavailableError("get", err)
		log.Warn("extraction cache lookup failed", map[string]interface{}{
			"errorCode": string(cacheErr.Code),
			"details":   cacheErr.Details,
		})
	}
	return nil, false
}

func (h *Handler) store(ctx context.Context, key string, result *models.ExtractionResult, log logger.Logger) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSON(ctx, key, result, h.config.CacheTTL); err != nil {
		cacheErr := errors.NewCacheUnavailableError("set", err)
		log.Warn("extraction cache write failed", map[string]interface{}{
			"errorCode": string(cacheErr.Code),
			"details":   cacheErr.Details,
		})
	}
}

func (h *Handler) record(ctx context.Context, result *models.ExtractionResult) {
	res := result.MixResolution
	metrics.ExtractionsTotal.WithLabelValues(string(res.Source), strconv.FormatBool(res.ReviewRequired)).Inc()
	for _, f := range res.Flags {
		metrics.ExtractionFlags.WithLabelValues(f).Inc()
	}
	metrics.UnderwritingScore.Observe(result.Underwriting.Score)
	h.obs.RecordResolution(ctx, string(res.Source), res.ReviewRequired)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}

	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":         job.GetKey(),
		"listingId":      output.ListingID,
		"runId":          output.RunID,
		"cached":         output.Cached,
		"source":         string(output.Extraction.MixResolution.Source),
		"reviewRequired": output.Extraction.MixResolution.ReviewRequired,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
