// File: internal/brain/planner/planner.go
package planner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

const (
	// FallbackCheckoutSelector is used when the analysis carries no checkout target.
	FallbackCheckoutSelector = ".button--checkout"
	// FallbackNewsletterModalSelector is used when the analysis carries no modal target.
	FallbackNewsletterModalSelector = "#newsletter-modal, .newsletter-modal"

	StickyClass = "morph-sticky-checkout"
	BannerID    = "banner-top"

	Rationale = "Planned CSS and JS operations derived from intent and detected targets."

	BannerMarkup = `<div class="morph-banner" style="position:fixed;top:0;left:0;right:0;background:#111;color:#fff;padding:8px 12px;z-index:10000;text-align:center;">` +
		"This page customized by Morph" +
		"</div>"
)

// Channel defaults applied when the intent carries no scope.
const (
	defaultWantCSS  = true
	defaultWantJS   = true
	defaultWantHTML = false
)

// Planner maps an intent, a user profile and page signals to a Plan. It is
// deterministic: the same inputs always yield the same plan.
type Planner struct {
	logger     *zap.Logger
	brandColor string
	rules      []rule
}

// NewPlanner creates a planner with the built-in keyword rules.
func NewPlanner(logger *zap.Logger, cfg config.BrainConfig) *Planner {
	return &Planner{
		logger:     logger.Named("planner"),
		brandColor: cfg.DefaultBrandColor,
		rules:      defaultRules(),
	}
}

// planState is the working set handed to each rule.
type planState struct {
	plan            *models.Plan
	text            string
	profile         *models.UserProfile
	checkout        string
	newsletterModal string
	brandColor      string
}

// Plan builds the plan for a single request.
func (p *Planner) Plan(intent models.Intent, profile *models.UserProfile, analysis *models.Analysis) (*models.Plan, error) {
	if profile == nil {
		profile = &models.UserProfile{}
	}
	if analysis == nil {
		analysis = &models.Analysis{}
	}

	plan := &models.Plan{
		WantCSS:  intent.InScope(models.ChannelCSS, defaultWantCSS),
		WantJS:   intent.InScope(models.ChannelJS, defaultWantJS),
		WantHTML: intent.InScope(models.ChannelHTML, defaultWantHTML),
	}

	st := &planState{
		plan:            plan,
		text:            strings.ToLower(intent.Text),
		profile:         profile,
		checkout:        targetOr(analysis.Targets, models.TargetCheckout, FallbackCheckoutSelector),
		newsletterModal: targetOr(analysis.Targets, models.TargetNewsletterModal, FallbackNewsletterModalSelector),
		brandColor:      p.brandColor,
	}

	var fired []string
	for _, r := range p.rules {
		if !r.match(st.text) {
			continue
		}
		if err := r.apply(st); err != nil {
			return nil, fmt.Errorf("planner rule %q failed: %w", r.name, err)
		}
		fired = append(fired, r.name)
	}

	plan.Targets = models.Targets{
		models.TargetCheckout:        st.checkout,
		models.TargetNewsletterModal: st.newsletterModal,
	}
	plan.Rationale = Rationale
	// Risk is not yet inferred from the plan content.
	plan.Risk = models.RiskMedium

	p.logger.Debug("Plan built.",
		zap.Strings("rules", fired),
		zap.Bool("want_css", plan.WantCSS),
		zap.Bool("want_js", plan.WantJS),
		zap.Bool("want_html", plan.WantHTML),
		zap.Int("css_blocks", len(plan.CSSBlocks)),
		zap.Int("js_ops", len(plan.JSOps)),
		zap.Int("html_ops", len(plan.HTMLOps)),
	)
	return plan, nil
}

func targetOr(targets models.Targets, key, fallback string) string {
	if v := targets[key]; v != "" {
		return v
	}
	return fallback
}

// primaryColor is the first brand color of the profile, or the configured
// default when that entry is missing or not a hex color.
func (st *planState) primaryColor() string {
	if len(st.profile.BrandColors) > 0 && models.ValidHexColor(st.profile.BrandColors[0]) {
		return st.profile.BrandColors[0]
	}
	return st.brandColor
}

// appendInstruction adds sentence to an existing instruction.
func appendInstruction(existing, sentence string) string {
	if existing == "" {
		return sentence
	}
	return existing + " " + sentence
}

// rule is a single keyword-triggered planning heuristic. Rules are evaluated
// independently and their effects accumulate.
type rule struct {
	name  string
	match func(text string) bool
	apply func(st *planState) error
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func defaultRules() []rule {
	return []rule{
		{
			name:  "sticky_checkout",
			match: func(text string) bool { return containsAny(text, "sticky", "checkout") },
			apply: applyStickyCheckout,
		},
		{
			name: "hide_newsletter",
			match: func(text string) bool {
				return strings.Contains(text, "hide") && containsAny(text, "newsletter", "modal")
			},
			apply: applyHideNewsletter,
		},
		{
			name:  "insert_banner",
			match: func(text string) bool { return containsAny(text, "banner", "insert") },
			apply: applyInsertBanner,
		},
	}
}

func applyStickyCheckout(st *planState) error {
	st.plan.CSSBlocks = append(st.plan.CSSBlocks,
		fmt.Sprintf(".%s { position: sticky; bottom: 16px; z-index: 9999; }", StickyClass),
		fmt.Sprintf("%s { background: %s; color: #fff; font-weight: 700; }", st.checkout, st.primaryColor()),
	)
	st.plan.JSOps = append(st.plan.JSOps,
		models.AddClass(st.checkout, StickyClass),
		models.SetStyle(st.checkout, map[string]string{"zIndex": "9999"}),
	)
	st.plan.CSSInstruction = "I will make the checkout button sticky and brand-colored."
	st.plan.JSInstruction = "I will apply a sticky class and safe inline styles idempotently."
	return nil
}

func applyHideNewsletter(st *planState) error {
	st.plan.JSOps = append(st.plan.JSOps, models.Hide(st.newsletterModal))
	st.plan.JSInstruction = appendInstruction(st.plan.JSInstruction, "I will hide the newsletter modal.")
	return nil
}

func applyInsertBanner(st *planState) error {
	st.plan.WantHTML = true

	op, err := htmlops.New(BannerID, "body", htmlops.Prepend, BannerMarkup)
	if err != nil {
		return err
	}
	st.plan.HTMLOps = append(st.plan.HTMLOps, op)
	fragment, err := htmlops.Fragment(st.plan.HTMLOps)
	if err != nil {
		return err
	}
	st.plan.HTMLOpsJSON = fragment
	st.plan.HTMLInstruction = "I will prepend a non-intrusive banner to body."
	return nil
}
