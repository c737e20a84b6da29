// File: internal/brain/synthesizer/synthesizer.go
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/morph-cli/internal/brain/models"
)

// Placeholders used as the base artifact when a site has no live patch yet.
const (
	EmptyCSSPatch  = "/* morph css patch */"
	EmptyJSPatch   = "export function apply(){}"
	EmptyHTMLPatch = "[]"
)

// Fallback instructions used when the plan carries none for a channel.
const (
	FallbackCSSInstruction  = "I will update styles as requested."
	FallbackJSInstruction   = "I will add idempotent DOM operations."
	FallbackHTMLInstruction = "I will update HTML structure safely."
)

// Input is everything a synthesizer may read. All fields are treated as
// read-only so synthesizers can run concurrently without locking.
type Input struct {
	Current  string
	Plan     *models.Plan
	Analysis *models.Analysis
	Profile  *models.UserProfile
}

// Synthesizer turns its channel's slice of a plan into an apply payload.
type Synthesizer interface {
	Channel() models.Channel
	Synthesize(ctx context.Context, in Input) (*models.ApplyPayload, error)
}

// base carries what every channel synthesizer shares.
type base struct {
	logger *zap.Logger
	model  string
}

func newBase(logger *zap.Logger, c models.Channel, model string) base {
	return base{logger: logger.Named("synthesizer." + string(c)), model: model}
}

func (b base) payload(code, update, instruction string) *models.ApplyPayload {
	return &models.ApplyPayload{Code: code, Update: update, Instruction: instruction, Model: b.model}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func checkInput(ctx context.Context, in Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if in.Plan == nil {
		return fmt.Errorf("synthesis requires a plan")
	}
	return nil
}

// -- CSS --

// CSSSynthesizer emits the plan's CSS rule blocks as the update.
type CSSSynthesizer struct{ base }

func NewCSSSynthesizer(logger *zap.Logger, model string) *CSSSynthesizer {
	return &CSSSynthesizer{newBase(logger, models.ChannelCSS, model)}
}

func (s *CSSSynthesizer) Channel() models.Channel { return models.ChannelCSS }

func (s *CSSSynthesizer) Synthesize(ctx context.Context, in Input) (*models.ApplyPayload, error) {
	if err := checkInput(ctx, in); err != nil {
		return nil, err
	}
	update := strings.Join(in.Plan.CSSBlocks, "\n")
	s.logger.Debug("CSS update synthesized.", zap.Int("blocks", len(in.Plan.CSSBlocks)))
	return s.payload(
		orDefault(in.Current, EmptyCSSPatch),
		update,
		orDefault(in.Plan.CSSInstruction, FallbackCSSInstruction),
	), nil
}

// -- JS --

// JSSynthesizer renders each JS operation and wraps them in an exported apply().
type JSSynthesizer struct{ base }

func NewJSSynthesizer(logger *zap.Logger, model string) *JSSynthesizer {
	return &JSSynthesizer{newBase(logger, models.ChannelJS, model)}
}

func (s *JSSynthesizer) Channel() models.Channel { return models.ChannelJS }

func (s *JSSynthesizer) Synthesize(ctx context.Context, in Input) (*models.ApplyPayload, error) {
	if err := checkInput(ctx, in); err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(in.Plan.JSOps))
	for i, op := range in.Plan.JSOps {
		src, err := op.Render()
		if err != nil {
			return nil, fmt.Errorf("js op %d: %w", i, err)
		}
		snippets = append(snippets, src)
	}

	s.logger.Debug("JS update synthesized.", zap.Int("ops", len(snippets)))
	return s.payload(
		orDefault(in.Current, EmptyJSPatch),
		WrapApply(strings.Join(snippets, "\n")),
		orDefault(in.Plan.JSInstruction, FallbackJSInstruction),
	), nil
}

// WrapApply wraps rendered operations in the exported zero-argument apply function.
func WrapApply(body string) string {
	return "export function apply(){\n" + body + "\n}"
}

// -- HTML --

// HTMLSynthesizer forwards the plan's serialized HTML ops fragment.
type HTMLSynthesizer struct{ base }

func NewHTMLSynthesizer(logger *zap.Logger, model string) *HTMLSynthesizer {
	return &HTMLSynthesizer{newBase(logger, models.ChannelHTML, model)}
}

func (s *HTMLSynthesizer) Channel() models.Channel { return models.ChannelHTML }

func (s *HTMLSynthesizer) Synthesize(ctx context.Context, in Input) (*models.ApplyPayload, error) {
	if err := checkInput(ctx, in); err != nil {
		return nil, err
	}
	s.logger.Debug("HTML update synthesized.", zap.Int("ops", len(in.Plan.HTMLOps)))
	return s.payload(
		orDefault(in.Current, EmptyHTMLPatch),
		in.Plan.HTMLOpsJSON,
		orDefault(in.Plan.HTMLInstruction, FallbackHTMLInstruction),
	), nil
}

// NewDefaultSet returns one synthesizer per channel.
func NewDefaultSet(logger *zap.Logger, model string) map[models.Channel]Synthesizer {
	return map[models.Channel]Synthesizer{
		models.ChannelCSS:  NewCSSSynthesizer(logger, model),
		models.ChannelJS:   NewJSSynthesizer(logger, model),
		models.ChannelHTML: NewHTMLSynthesizer(logger, model),
	}
}
