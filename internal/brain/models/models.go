// File: internal/brain/models/models.go
package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/morph-cli/internal/brain/htmlops"
)

// Channel identifies one of the independent output streams of the pipeline.
type Channel string

const (
	ChannelCSS  Channel = "css"
	ChannelJS   Channel = "js"
	ChannelHTML Channel = "html"
)

// Channels lists every channel in synthesis order.
var Channels = []Channel{ChannelCSS, ChannelJS, ChannelHTML}

// ParseChannel converts a scope entry into a Channel.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelCSS, ChannelJS, ChannelHTML:
		return c, nil
	default:
		return "", fmt.Errorf("unknown channel %q", s)
	}
}

// RiskLevel is the coarse risk classification shared by profiles and plans.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the known risk levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidHexColor reports whether s is a #rgb or #rrggbb color.
func ValidHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Target keys used in Analysis and Plan target maps.
const (
	TargetCheckout        = "checkout"
	TargetNewsletterModal = "newsletter_modal"
)

// UserProfile is the immutable description of the user a plan is built for.
type UserProfile struct {
	UserID          string                 `json:"userId" yaml:"userId"`
	DisplayName     string                 `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	BrandColors     []string               `json:"brandColors" yaml:"brandColors"`
	FontPreferences []string               `json:"fontPreferences" yaml:"fontPreferences"`
	Accessibility   map[string]interface{} `json:"accessibility,omitempty" yaml:"accessibility,omitempty"`
	Tone            string                 `json:"tone,omitempty" yaml:"tone,omitempty"`
	RiskLevel       RiskLevel              `json:"riskLevel" yaml:"riskLevel"`
}

// SiteProfile is the caller-owned, per-origin state the plan is diffed against.
type SiteProfile struct {
	Origin    string                   `json:"origin" yaml:"origin"`
	Version   int                      `json:"version" yaml:"version"`
	CSSPatch  string                   `json:"cssPatch" yaml:"cssPatch"`
	JSPatch   string                   `json:"jsPatch" yaml:"jsPatch"`
	HTMLPatch string                   `json:"htmlPatch" yaml:"htmlPatch"`
	Rules     []map[string]interface{} `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Patch returns the live patch text for a channel. A nil profile has no patches.
func (s *SiteProfile) Patch(c Channel) string {
	if s == nil {
		return ""
	}
	switch c {
	case ChannelCSS:
		return s.CSSPatch
	case ChannelJS:
		return s.JSPatch
	case ChannelHTML:
		return s.HTMLPatch
	}
	return ""
}

// PageContext is the observable state of a single page.
type PageContext struct {
	URL          string                 `json:"url" yaml:"url"`
	Origin       string                 `json:"origin" yaml:"origin"`
	Route        string                 `json:"route,omitempty" yaml:"route,omitempty"`
	HTML         string                 `json:"html" yaml:"html"`
	Stylesheets  []string               `json:"stylesheets" yaml:"stylesheets"`
	InlineStyles []string               `json:"inlineStyles" yaml:"inlineStyles"`
	Scripts      []string               `json:"scripts" yaml:"scripts"`
	Meta         map[string]interface{} `json:"meta,omitempty" yaml:"meta,omitempty"`
	DOMSummary   map[string]interface{} `json:"domSummary,omitempty" yaml:"domSummary,omitempty"`
}

// Intent is a natural-language edit request with an optional channel scope.
type Intent struct {
	Text  string    `json:"text" yaml:"text"`
	Scope []Channel `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// InScope reports whether c is wanted given the scope and the channel default.
// A missing or empty scope keeps the default.
func (i Intent) InScope(c Channel, def bool) bool {
	if len(i.Scope) == 0 {
		return def
	}
	for _, s := range i.Scope {
		if s == c {
			return true
		}
	}
	return false
}

// BrainRequest bundles every input of a single Brain run.
type BrainRequest struct {
	UserProfile UserProfile  `json:"userProfile" yaml:"userProfile"`
	Page        PageContext  `json:"page" yaml:"page"`
	Intent      Intent       `json:"intent" yaml:"intent"`
	SiteProfile *SiteProfile `json:"siteProfile,omitempty" yaml:"siteProfile,omitempty"`
}

// Targets maps a semantic UI name to a best-effort CSS selector.
type Targets map[string]string

// Clone returns an independent copy of t.
func (t Targets) Clone() Targets {
	if t == nil {
		return nil
	}
	out := make(Targets, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Stats holds structural counts derived from the page markup.
type Stats struct {
	Divs        int `json:"num_divs"`
	Images      int `json:"num_imgs"`
	Buttons     int `json:"num_buttons"`
	Links       int `json:"num_links"`
	Forms       int `json:"num_forms"`
	InlineRules int `json:"num_inline_rules"`
}

// Analysis is the signal bag produced by the page analyzer. It is derived per
// request and never persisted.
type Analysis struct {
	Palette  []string `json:"palette"`
	Headings []string `json:"headings"`
	Targets  Targets  `json:"targets"`
	Stats    Stats    `json:"stats"`
}

// Plan is the structured translation of an intent into per-channel work.
type Plan struct {
	WantCSS  bool
	WantJS   bool
	WantHTML bool

	CSSBlocks   []string
	JSOps       []JSOp
	HTMLOps     []htmlops.Op
	HTMLOpsJSON string

	CSSInstruction  string
	JSInstruction   string
	HTMLInstruction string

	Rationale string
	Risk      RiskLevel
	Targets   Targets
}

// Wants reports the want flag for a channel.
func (p *Plan) Wants(c Channel) bool {
	switch c {
	case ChannelCSS:
		return p.WantCSS
	case ChannelJS:
		return p.WantJS
	case ChannelHTML:
		return p.WantHTML
	}
	return false
}

// Instruction returns the plan's instruction for a channel, possibly empty.
func (p *Plan) Instruction(c Channel) string {
	switch c {
	case ChannelCSS:
		return p.CSSInstruction
	case ChannelJS:
		return p.JSInstruction
	case ChannelHTML:
		return p.HTMLInstruction
	}
	return ""
}

// ApplyPayload is a self-contained unit handed to the downstream merge step.
type ApplyPayload struct {
	Code        string `json:"code"`
	Update      string `json:"update"`
	Instruction string `json:"instruction"`
	Model       string `json:"model"`
}

// ApplyBatch carries at most one payload per channel. A nil slot means the
// channel was not wanted.
type ApplyBatch struct {
	CSS  *ApplyPayload `json:"css,omitempty"`
	JS   *ApplyPayload `json:"js,omitempty"`
	HTML *ApplyPayload `json:"html,omitempty"`
}

// Get returns the payload for a channel.
func (b *ApplyBatch) Get(c Channel) *ApplyPayload {
	switch c {
	case ChannelCSS:
		return b.CSS
	case ChannelJS:
		return b.JS
	case ChannelHTML:
		return b.HTML
	}
	return nil
}

// Set stores a payload in the slot for a channel.
func (b *ApplyBatch) Set(c Channel, p *ApplyPayload) {
	switch c {
	case ChannelCSS:
		b.CSS = p
	case ChannelJS:
		b.JS = p
	case ChannelHTML:
		b.HTML = p
	}
}

// Decision surfaces what was planned for auditability.
type Decision struct {
	Targets   Targets   `json:"targets"`
	Rationale string    `json:"rationale"`
	Risk      RiskLevel `json:"risk"`
}

// BrainOutput is the complete response of a Brain run.
type BrainOutput struct {
	Decisions  Decision   `json:"decisions"`
	Warnings   []string   `json:"warnings"`
	ApplyBatch ApplyBatch `json:"applyBatch"`
}
