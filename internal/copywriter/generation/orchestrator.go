// internal/copywriter/generation/orchestrator.go
package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/common/metrics"
	"betfunnels-copy/internal/common/observability"
	"betfunnels-copy/internal/copywriter/briefing"
	"betfunnels-copy/internal/copywriter/segment"
	"betfunnels-copy/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TemplateStore is the read side of the prompt store.
type TemplateStore interface {
	MasterGuide(ctx context.Context) (string, error)
	Casino(ctx context.Context, name string) (*models.CasinoRecord, error)
}

type ReferenceResolver interface {
	Resolve(funnelType models.FunnelType, reactivationRule string) []string
}

type Config struct {
	Mode         string
	DayCount     int
	ReviewPass   bool
	ModelTimeout time.Duration
	Generation   Options
	Review       Options
}

// ConfigFrom maps the loaded configuration onto the orchestrator settings.
func ConfigFrom(cfg *config.Config) Config {
	gen := Options{
		Temperature:     cfg.GenAI.Temperature,
		TopP:            cfg.GenAI.TopP,
		MaxOutputTokens: cfg.GenAI.MaxOutputTokens,
	}
	review := gen
	review.Temperature = cfg.GenAI.ReviewTemp
	return Config{
		Mode:         cfg.Generation.Mode,
		DayCount:     cfg.Generation.DayCount,
		ReviewPass:   cfg.Generation.ReviewPass,
		ModelTimeout: config.GetDuration(cfg.Generation.ModelTimeout),
		Generation:   gen,
		Review:       review,
	}
}

// Orchestrator assembles prompts from the store, the resolved reference
// templates and the briefing, calls the model and stitches the answer.
type Orchestrator struct {
	cfg      Config
	store    TemplateStore
	resolver ReferenceResolver
	briefs   *briefing.Builder
	model    Model
	obs      *observability.Observability
	logger   logger.Logger
}

func New(cfg Config, store TemplateStore, resolver ReferenceResolver, briefs *briefing.Builder, model Model, obs *observability.Observability, log logger.Logger) *Orchestrator {
	if cfg.Mode == "" {
		cfg.Mode = config.ModePerChunk
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		briefs:   briefs,
		model:    model,
		obs:      obs,
		logger:   log,
	}
}

// Generate produces the full funnel copy for spec. The spec is expected to
// be normalized and validated already.
func (o *Orchestrator) Generate(ctx context.Context, spec *models.FunnelSpec) (result *models.GenerationResult, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "copy.generate",
		attribute.String("casino", spec.Casino),
		attribute.String("funnel", spec.FunnelType.Key()),
		attribute.String("mode", o.cfg.Mode),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = string(errors.Normalize(err).Code)
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		}
		span.End()
		o.obs.RecordGeneration(ctx, o.cfg.Mode, status, time.Since(start))
	}()

	log := logger.FromContext(ctx, o.logger).WithFields(map[string]interface{}{
		"casino":     spec.Casino,
		"funnelType": string(spec.FunnelType),
	})

	guide, err := o.store.MasterGuide(ctx)
	if err != nil {
		return nil, err
	}

	casino, err := o.store.Casino(ctx, spec.Casino)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(casino.Tone) == "" {
		return nil, errors.NewMissingToneError(casino.Name)
	}

	keys := o.resolver.Resolve(spec.FunnelType, spec.ReactivationRule)
	template, err := collectTemplates(casino, keys)
	if err != nil {
		return nil, err
	}

	if !spec.IsSeasonal() {
		if err := segment.ValidateDays(template, o.cfg.DayCount); err != nil {
			if stdErr, ok := errors.As(err); ok {
				stdErr.With("matchedCasino", casino.Name)
			}
			return nil, err
		}
	}

	pc := promptContext{
		guide:  guide,
		casino: casino,
		spec:   spec,
		brief:  o.briefs.Build(spec),
	}

	log.Info("generating copy", map[string]interface{}{
		"matchedCasino": casino.Name,
		"referenceKeys": keys,
		"mode":          o.cfg.Mode,
	})

	var copyAll string
	var chunkCount int
	if o.cfg.Mode == config.ModeSinglePass {
		copyAll, err = o.singlePass(ctx, pc, template, log)
		chunkCount = 1
	} else {
		copyAll, chunkCount, err = o.perChunk(ctx, pc, template)
	}
	if err != nil {
		log.Error("copy generation failed", map[string]interface{}{"error": err})
		return nil, err
	}

	log.Info("copy generated", map[string]interface{}{
		"chunks":     chunkCount,
		"length":     len(copyAll),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &models.GenerationResult{
		CopyAll:       copyAll,
		MatchedCasino: casino.Name,
		Mode:          o.cfg.Mode,
		ChunkCount:    chunkCount,
		ReferenceKeys: keys,
	}, nil
}

// collectTemplates joins the templates stored under keys, failing when any
// of them is blank.
func collectTemplates(casino *models.CasinoRecord, keys []string) (string, error) {
	var missing []string
	debug := make(map[string]interface{}, len(keys))
	templates := make([]string, 0, len(keys))

	for _, key := range keys {
		text := strings.TrimSpace(casino.Reference(key))
		debug[key] = map[string]interface{}{"trimmedLength": len([]rune(text))}
		if text == "" {
			missing = append(missing, key)
			continue
		}
		templates = append(templates, text)
	}

	if len(missing) > 0 {
		return "", errors.NewMissingReferenceError(casino.Name, missing).With("refDebug", debug)
	}
	return strings.Join(templates, "\n\n"), nil
}

func (o *Orchestrator) perChunk(ctx context.Context, pc promptContext, template string) (string, int, error) {
	var chunks []models.TemplateChunk
	for _, c := range segment.Split(template) {
		if c.Day > o.cfg.DayCount {
			continue
		}
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		chunks = append(chunks, c)
	}

	outputs := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := o.call(ctx, fmt.Sprintf("chunk_%d", chunk.Day), chunkPrompt(pc, chunk), o.cfg.Generation)
		if err != nil {
			stdErr := errors.Normalize(err)
			return "", 0, stdErr.With("failedChunk", i+1).With("totalChunks", len(chunks))
		}
		if !chunk.IsPreamble() && chunk.Header != "" && !segment.StartsWithDay(text, chunk.Day) {
			text = chunk.Header + "\n" + text
		}
		outputs = append(outputs, text)
	}

	return Clean(strings.Join(outputs, "\n\n")), len(chunks), nil
}

func (o *Orchestrator) singlePass(ctx context.Context, pc promptContext, template string, log logger.Logger) (string, error) {
	draft, err := o.call(ctx, "single", singlePassPrompt(pc, template, o.cfg.DayCount), o.cfg.Generation)
	if err != nil {
		return "", err
	}

	if o.cfg.ReviewPass {
		draft, err = o.call(ctx, "review", reviewPrompt(pc, template, draft, o.cfg.DayCount), o.cfg.Review)
		if err != nil {
			return "", err
		}
	}

	if pc.brief.Seasonal {
		return draft, nil
	}

	draft = segment.TruncateAfterDay(draft, o.cfg.DayCount)
	missing := segment.MissingDays(draft, o.cfg.DayCount)
	if len(missing) == 0 {
		return draft, nil
	}

	log.Warn("draft is missing days, requesting completion", map[string]interface{}{"missingDays": missing})
	completion, err := o.call(ctx, "completion", completionPrompt(pc, template, missing), o.cfg.Generation)
	if err != nil {
		return "", err
	}

	merged := mergeDays(draft, segment.TruncateAfterDay(completion, o.cfg.DayCount))
	if gaps := segment.MissingDays(merged, o.cfg.DayCount); len(gaps) > 0 {
		log.Warn("copy still missing days after completion", map[string]interface{}{"missingDays": gaps})
	}
	return merged, nil
}

// call runs one model call under its own timeout and cleans the output.
func (o *Orchestrator) call(ctx context.Context, pass, prompt string, opts Options) (string, error) {
	if o.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ModelTimeout)
		defer cancel()
	}

	ctx, span := o.obs.StartSpan(ctx, "copy.model_call",
		attribute.String("pass", pass),
		attribute.Int("promptLength", len(prompt)),
	)
	defer span.End()

	start := time.Now()
	text, err := o.model.Generate(ctx, prompt, opts)
	metrics.ModelCallDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())

	if err == nil {
		text = Clean(text)
		if text == "" {
			err = errors.NewEmptyModelResponseError("output empty after cleanup")
		}
	}
	if err != nil {
		if _, ok := errors.As(err); !ok {
			err = errors.NewModelError(err)
		}
		metrics.ModelCalls.WithLabelValues(pass, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		return "", err
	}

	metrics.ModelCalls.WithLabelValues(pass, "success").Inc()
	return text, nil
}

// mergeDays keeps every draft section in its order and slots in the day
// sections of completion that draft lacks, each before the first later day.
func mergeDays(draft, completion string) string {
	var parts []string
	var sections []string
	var sectionDays []int
	present := make(map[int]bool)

	for _, c := range segment.Split(draft) {
		if c.IsPreamble() {
			if p := strings.TrimSpace(c.Text); p != "" {
				parts = append(parts, p)
			}
			continue
		}
		present[c.Day] = true
		sections = append(sections, strings.TrimSpace(c.Text))
		sectionDays = append(sectionDays, c.Day)
	}

	missing := make(map[int][]string)
	for _, c := range segment.Split(completion) {
		if c.IsPreamble() || present[c.Day] {
			continue
		}
		missing[c.Day] = append(missing[c.Day], strings.TrimSpace(c.Text))
	}
	days := make([]int, 0, len(missing))
	for d := range missing {
		days = append(days, d)
	}
	sort.Ints(days)

	next := 0
	for i, text := range sections {
		for next < len(days) && days[next] < sectionDays[i] {
			parts = append(parts, missing[days[next]]...)
			next++
		}
		parts = append(parts, text)
	}
	for ; next < len(days); next++ {
		parts = append(parts, missing[days[next]]...)
	}
	return strings.Join(parts, "\n\n")
}
