// File: internal/brain/validator/validator.go
package validator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/morph-cli/internal/brain/cssparse"
	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

const (
	WarnCheckoutUnidentified = "Checkout selector not confidently identified; check CSS/JS targets."
	WarnLargeCSSUpdate       = "Large CSS update; consider scoping more narrowly."
	WarnNoHTMLOps            = "HTML updates requested but no ops generated."
	WarnMalformedHTMLOps     = "HTML ops fragment could not be decoded; the merge step may reject it."
)

// MalformedCSSWarning is the warning for the 1-based index of a CSS block that
// does not parse as a rule.
func MalformedCSSWarning(index int) string {
	return fmt.Sprintf("CSS block %d is malformed; it may be dropped by the merge step.", index)
}

// Validator annotates a plan with advisory warnings. It never fails and
// never blocks assembly of the output.
type Validator struct {
	logger            *zap.Logger
	largeCSSThreshold int
}

func NewValidator(logger *zap.Logger, cfg config.BrainConfig) *Validator {
	return &Validator{
		logger:            logger.Named("validator"),
		largeCSSThreshold: cfg.LargeCSSThreshold,
	}
}

// Validate evaluates every check independently and returns all warnings in
// check order.
func (v *Validator) Validate(plan *models.Plan, analysis *models.Analysis) []string {
	warnings := []string{}
	if plan == nil {
		return warnings
	}

	if plan.Targets[models.TargetCheckout] == "" &&
		strings.Contains(strings.ToLower(plan.CSSInstruction), "sticky") {
		warnings = append(warnings, WarnCheckoutUnidentified)
	}

	if len(plan.CSSBlocks) > v.largeCSSThreshold {
		warnings = append(warnings, WarnLargeCSSUpdate)
	}

	if plan.WantHTML && plan.HTMLOpsJSON == "" {
		warnings = append(warnings, WarnNoHTMLOps)
	}

	if plan.HTMLOpsJSON != "" {
		if _, err := htmlops.ParseFragment(plan.HTMLOpsJSON); err != nil {
			warnings = append(warnings, WarnMalformedHTMLOps)
		}
	}

	for i, block := range plan.CSSBlocks {
		if !cssparse.Parse(block).OK() {
			warnings = append(warnings, MalformedCSSWarning(i+1))
		}
	}

	if len(warnings) > 0 {
		v.logger.Debug("Plan produced warnings.", zap.Strings("warnings", warnings))
	}
	return warnings
}
