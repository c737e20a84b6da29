// File: internal/brain/brain.go
package brain

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/morph-cli/internal/brain/analyzer"
	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/brain/patchdiff"
	"github.com/xkilldash9x/morph-cli/internal/brain/planner"
	"github.com/xkilldash9x/morph-cli/internal/brain/synthesizer"
	"github.com/xkilldash9x/morph-cli/internal/brain/validator"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

// ErrNilRequest is returned by Run when no request is supplied.
var ErrNilRequest = errors.New("brain: nil request")

// Brain sequences analysis, planning, synthesis and validation for a single
// request and assembles the output bundle.
type Brain struct {
	logger       *zap.Logger
	cfg          config.BrainConfig
	analyzer     *analyzer.PageAnalyzer
	planner      *planner.Planner
	validator    *validator.Validator
	synthesizers map[models.Channel]synthesizer.Synthesizer
}

// Option customizes a Brain at construction.
type Option func(*Brain)

// WithSynthesizer replaces the synthesizer for its channel.
func WithSynthesizer(s synthesizer.Synthesizer) Option {
	return func(b *Brain) { b.synthesizers[s.Channel()] = s }
}

// New wires the default pipeline stages from cfg.
func New(logger *zap.Logger, cfg config.BrainConfig, opts ...Option) *Brain {
	logger = logger.Named("brain")
	b := &Brain{
		logger:       logger,
		cfg:          cfg,
		analyzer:     analyzer.NewPageAnalyzer(logger, cfg),
		planner:      planner.NewPlanner(logger, cfg),
		validator:    validator.NewValidator(logger, cfg),
		synthesizers: synthesizer.NewDefaultSet(logger, cfg.ApplyModel),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the pipeline. Either the complete output is returned or the
// request fails; a partial batch is never returned.
func (b *Brain) Run(ctx context.Context, req *models.BrainRequest) (*models.BrainOutput, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("brain run aborted before start: %w", err)
	}

	requestID := uuid.New().String()
	logger := b.logger.With(zap.String("request_id", requestID), zap.String("origin", req.Page.Origin))

	analysis := b.analyzer.Analyze(&req.Page)

	plan, err := b.planner.Plan(req.Intent, &req.UserProfile, analysis)
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	for _, ch := range models.Channels {
		if _, ok := b.synthesizers[ch]; plan.Wants(ch) && !ok {
			return nil, fmt.Errorf("no synthesizer registered for channel %q", ch)
		}
	}

	var (
		batch    models.ApplyBatch
		results  = make([]*models.ApplyPayload, len(models.Channels))
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range models.Channels {
		i, ch := i, ch
		if !plan.Wants(ch) {
			continue
		}
		synth := b.synthesizers[ch]
		in := synthesizer.Input{
			Current:  req.SiteProfile.Patch(ch),
			Plan:     plan,
			Analysis: analysis,
			Profile:  &req.UserProfile,
		}
		// Each branch writes only its own slot.
		g.Go(func() (err error) {
			defer recoverStage(string(ch), &err)
			payload, err := synth.Synthesize(gctx, in)
			if err != nil {
				return fmt.Errorf("%s synthesis failed: %w", ch, err)
			}
			if payload == nil {
				return fmt.Errorf("%s synthesis returned no payload", ch)
			}
			results[i] = payload
			return nil
		})
	}
	g.Go(func() (err error) {
		defer recoverStage("validator", &err)
		warnings = b.validator.Validate(plan, analysis)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Brain run failed.", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("brain run cancelled: %w", err)
	}

	for i, ch := range models.Channels {
		batch.Set(ch, results[i])
	}
	warnings = append(warnings, b.driftWarnings(logger, req.SiteProfile, plan, &batch)...)

	out := &models.BrainOutput{
		Decisions: models.Decision{
			Targets:   plan.Targets.Clone(),
			Rationale: plan.Rationale,
			Risk:      plan.Risk,
		},
		Warnings:   warnings,
		ApplyBatch: batch,
	}

	logger.Info("Brain run completed.",
		zap.Bool("css", batch.CSS != nil),
		zap.Bool("js", batch.JS != nil),
		zap.Bool("html", batch.HTML != nil),
		zap.Int("warnings", len(warnings)),
	)
	return out, nil
}

// Analyze runs only the page analyzer.
func (b *Brain) Analyze(page *models.PageContext) *models.Analysis {
	return b.analyzer.Analyze(page)
}

// driftWarnings flags channels whose planned op lines all appear, in order,
// in the site's live patch. Channels with no ops are skipped: their update is
// only framing, which every live patch already carries.
func (b *Brain) driftWarnings(logger *zap.Logger, site *models.SiteProfile, plan *models.Plan, batch *models.ApplyBatch) []string {
	if !b.cfg.DetectDrift || site == nil {
		return nil
	}
	var warnings []string
	for _, ch := range models.Channels {
		live := site.Patch(ch)
		if batch.Get(ch) == nil || live == "" {
			continue
		}
		ops := opLines(plan, ch)
		if ops == "" {
			continue
		}
		summary := patchdiff.Summarize(live, ops)
		logger.Debug("Live patch diff.",
			zap.String("channel", string(ch)),
			zap.Int("added", summary.Added),
			zap.Int("removed", summary.Removed),
			zap.Int("unchanged", summary.Unchanged),
		)
		if summary.AlreadyApplied() {
			warnings = append(warnings, fmt.Sprintf("%s update already present in live patch (site version %d).", ch, site.Version))
		}
	}
	return warnings
}

// opLines renders the plan's ops for c without the channel's framing.
func opLines(plan *models.Plan, c models.Channel) string {
	switch c {
	case models.ChannelCSS:
		return strings.Join(plan.CSSBlocks, "\n")
	case models.ChannelJS:
		snippets := make([]string, 0, len(plan.JSOps))
		for _, op := range plan.JSOps {
			src, err := op.Render()
			if err != nil {
				return ""
			}
			snippets = append(snippets, src)
		}
		return strings.Join(snippets, "\n")
	case models.ChannelHTML:
		var lines []string
		for _, line := range strings.Split(plan.HTMLOpsJSON, "\n") {
			if strings.TrimSpace(line) != htmlops.Marker {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// recoverStage converts a panic inside a pipeline branch into an error.
func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s stage panicked: %v\n%s", stage, r, debug.Stack())
	}
}
