// File: internal/brain/synthesizer/synthesizer_test.go
package synthesizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
)

const testModel = "apply"

func TestCSSSynthesizer(t *testing.T) {
	s := NewCSSSynthesizer(zaptest.NewLogger(t), testModel)
	assert.Equal(t, models.ChannelCSS, s.Channel())

	t.Run("joins blocks and keeps current", func(t *testing.T) {
		plan := &models.Plan{CSSBlocks: []string{".a{}", ".b{}"}, CSSInstruction: "do css"}
		p, err := s.Synthesize(context.Background(), Input{Current: ".live{}", Plan: plan})
		require.NoError(t, err)
		assert.Equal(t, &models.ApplyPayload{Code: ".live{}", Update: ".a{}\n.b{}", Instruction: "do css", Model: testModel}, p)
	})

	t.Run("placeholder and fallback instruction", func(t *testing.T) {
		p, err := s.Synthesize(context.Background(), Input{Plan: &models.Plan{}})
		require.NoError(t, err)
		assert.Equal(t, EmptyCSSPatch, p.Code)
		assert.Empty(t, p.Update)
		assert.Equal(t, FallbackCSSInstruction, p.Instruction)
	})
}

func TestJSSynthesizer(t *testing.T) {
	s := NewJSSynthesizer(zaptest.NewLogger(t), testModel)
	assert.Equal(t, models.ChannelJS, s.Channel())

	t.Run("wraps rendered ops", func(t *testing.T) {
		plan := &models.Plan{JSOps: []models.JSOp{models.Hide(".m"), models.AddClass(".b", "c")}}
		p, err := s.Synthesize(context.Background(), Input{Plan: plan})
		require.NoError(t, err)

		hide, _ := models.Hide(".m").Render()
		add, _ := models.AddClass(".b", "c").Render()
		assert.Equal(t, WrapApply(hide+"\n"+add), p.Update)
		assert.True(t, strings.HasPrefix(p.Update, "export function apply(){\n"))
		assert.True(t, strings.HasSuffix(p.Update, "\n}"))
		assert.Equal(t, EmptyJSPatch, p.Code)
		assert.Equal(t, FallbackJSInstruction, p.Instruction)
	})

	t.Run("no ops yields empty apply", func(t *testing.T) {
		p, err := s.Synthesize(context.Background(), Input{Plan: &models.Plan{}})
		require.NoError(t, err)
		assert.Equal(t, "export function apply(){\n\n}", p.Update)
	})

	t.Run("unknown op fails", func(t *testing.T) {
		plan := &models.Plan{JSOps: []models.JSOp{{Kind: "bogus", Selector: "x"}}}
		_, err := s.Synthesize(context.Background(), Input{Plan: plan})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrUnknownJSOp)
	})
}

func TestHTMLSynthesizer(t *testing.T) {
	s := NewHTMLSynthesizer(zaptest.NewLogger(t), testModel)
	assert.Equal(t, models.ChannelHTML, s.Channel())

	op, err := htmlops.New("banner-top", "body", htmlops.Prepend, "<div>x</div>")
	require.NoError(t, err)
	fragment, err := htmlops.Fragment([]htmlops.Op{op})
	require.NoError(t, err)

	p, err := s.Synthesize(context.Background(), Input{Plan: &models.Plan{HTMLOps: []htmlops.Op{op}, HTMLOpsJSON: fragment}})
	require.NoError(t, err)
	assert.Equal(t, fragment, p.Update)
	assert.Equal(t, EmptyHTMLPatch, p.Code)
	assert.Equal(t, FallbackHTMLInstruction, p.Instruction)
	assert.Equal(t, testModel, p.Model)
}

func TestSynthesize_Errors(t *testing.T) {
	set := NewDefaultSet(zaptest.NewLogger(t), testModel)
	require.Len(t, set, len(models.Channels))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, ch := range models.Channels {
		s := set[ch]
		require.NotNil(t, s)
		assert.Equal(t, ch, s.Channel())

		_, err := s.Synthesize(ctx, Input{Plan: &models.Plan{}})
		assert.ErrorIs(t, err, context.Canceled, "channel %s", ch)

		_, err = s.Synthesize(context.Background(), Input{})
		assert.Error(t, err, "channel %s without plan", ch)
	}
}
