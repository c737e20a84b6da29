// File: internal/brain/validator/validator_test.go
package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(zaptest.NewLogger(t), config.DefaultBrainConfig())
}

func countOf(warnings []string, w string) int {
	n := 0
	for _, x := range warnings {
		if x == w {
			n++
		}
	}
	return n
}

func TestValidate_LargeCSSUpdate(t *testing.T) {
	v := newTestValidator(t)

	blocks := make([]string, 11)
	for i := range blocks {
		blocks[i] = fmt.Sprintf(".c%d { color: red; }", i)
	}
	plan := &models.Plan{CSSBlocks: blocks, Targets: models.Targets{models.TargetCheckout: ".x"}}

	warnings := v.Validate(plan, &models.Analysis{})
	assert.Equal(t, 1, countOf(warnings, WarnLargeCSSUpdate))
	assert.Len(t, warnings, 1)

	plan.CSSBlocks = blocks[:10]
	assert.Empty(t, v.Validate(plan, nil), "ten blocks is not large")
}

func TestValidate_CheckoutUnidentified(t *testing.T) {
	v := newTestValidator(t)

	plan := &models.Plan{CSSInstruction: "I will make the checkout button Sticky.", Targets: models.Targets{}}
	assert.Equal(t, []string{WarnCheckoutUnidentified}, v.Validate(plan, nil))

	plan.Targets[models.TargetCheckout] = ".pay"
	assert.Empty(t, v.Validate(plan, nil))

	plan = &models.Plan{CSSInstruction: "recolor", Targets: models.Targets{}}
	assert.Empty(t, v.Validate(plan, nil), "only sticky instructions need a checkout target")
}

func TestValidate_HTMLOps(t *testing.T) {
	v := newTestValidator(t)

	t.Run("wanted without ops", func(t *testing.T) {
		plan := &models.Plan{WantHTML: true, Targets: models.Targets{models.TargetCheckout: ".x"}}
		assert.Equal(t, []string{WarnNoHTMLOps}, v.Validate(plan, nil))
	})

	t.Run("banner ops present", func(t *testing.T) {
		op, err := htmlops.New("banner-top", "body", htmlops.Prepend, "<div>hi</div>")
		assert.NoError(t, err)
		fragment, err := htmlops.Fragment([]htmlops.Op{op})
		assert.NoError(t, err)

		plan := &models.Plan{WantHTML: true, HTMLOps: []htmlops.Op{op}, HTMLOpsJSON: fragment, Targets: models.Targets{models.TargetCheckout: ".x"}}
		assert.Empty(t, v.Validate(plan, nil))
	})

	t.Run("malformed fragment", func(t *testing.T) {
		plan := &models.Plan{WantHTML: true, HTMLOpsJSON: "{oops", Targets: models.Targets{models.TargetCheckout: ".x"}}
		assert.Equal(t, []string{WarnMalformedHTMLOps}, v.Validate(plan, nil))
	})
}

func TestValidate_MalformedCSS(t *testing.T) {
	v := newTestValidator(t)

	plan := &models.Plan{
		CSSBlocks: []string{".ok { color: red; }", ".broken { color: red;", "{ color: blue; }"},
		Targets:   models.Targets{models.TargetCheckout: ".x"},
	}
	assert.Equal(t, []string{MalformedCSSWarning(2), MalformedCSSWarning(3)}, v.Validate(plan, nil))
}

func TestValidate_ChecksAreIndependent(t *testing.T) {
	v := newTestValidator(t)

	blocks := make([]string, 12)
	for i := range blocks {
		blocks[i] = ".a { color: red; }"
	}
	plan := &models.Plan{
		WantHTML:       true,
		CSSBlocks:      blocks,
		CSSInstruction: "sticky",
		Targets:        models.Targets{},
	}
	assert.Equal(t, []string{WarnCheckoutUnidentified, WarnLargeCSSUpdate, WarnNoHTMLOps}, v.Validate(plan, nil))
}

func TestValidate_NeverNil(t *testing.T) {
	v := newTestValidator(t)
	assert.NotNil(t, v.Validate(nil, nil))
	assert.NotNil(t, v.Validate(&models.Plan{Targets: models.Targets{models.TargetCheckout: ".x"}}, nil))
}
