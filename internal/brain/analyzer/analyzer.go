// File: internal/brain/analyzer/analyzer.go
package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/morph-cli/internal/brain/cssparse"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

const (
	// DefaultCheckoutSelector is used when no checkout control can be inferred.
	DefaultCheckoutSelector = "button.button--checkout"
	// NewsletterModalSelector is returned unconditionally; it is not inferred.
	NewsletterModalSelector = "#newsletter-modal, .newsletter-modal"
)

// Hex color literals with exactly 3 or 6 digits. Only inline markup is scanned.
var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// PageAnalyzer extracts lightweight signals from page markup. It never fails:
// markup that cannot be parsed degrades to empty structural signals.
type PageAnalyzer struct {
	logger       *zap.Logger
	paletteLimit int
	headingLimit int
}

// NewPageAnalyzer creates an analyzer using the limits from cfg.
func NewPageAnalyzer(logger *zap.Logger, cfg config.BrainConfig) *PageAnalyzer {
	return &PageAnalyzer{
		logger:       logger.Named("analyzer"),
		paletteLimit: cfg.PaletteLimit,
		headingLimit: cfg.HeadingLimit,
	}
}

// Analyze derives the signal bag for a page.
func (a *PageAnalyzer) Analyze(page *models.PageContext) *models.Analysis {
	analysis := &models.Analysis{
		Palette:  []string{},
		Headings: []string{},
		Targets: models.Targets{
			models.TargetCheckout:        DefaultCheckoutSelector,
			models.TargetNewsletterModal: NewsletterModalSelector,
		},
	}
	if page == nil {
		return analysis
	}

	analysis.Palette = ExtractPalette(page.HTML, a.paletteLimit)
	analysis.Stats.InlineRules = countInlineRules(page.InlineStyles)

	doc, err := htmlquery.Parse(strings.NewReader(page.HTML))
	if err != nil {
		a.logger.Debug("Page markup could not be parsed; using empty structural signals.", zap.String("url", page.URL), zap.Error(err))
		return analysis
	}

	analysis.Headings = ExtractHeadings(doc, a.headingLimit)
	if sel, ok := FindCheckoutSelector(doc); ok {
		analysis.Targets[models.TargetCheckout] = sel
	}

	analysis.Stats.Divs = len(htmlquery.Find(doc, "//div"))
	analysis.Stats.Images = len(htmlquery.Find(doc, "//img"))
	analysis.Stats.Buttons = len(htmlquery.Find(doc, "//button"))
	analysis.Stats.Links = len(htmlquery.Find(doc, "//a"))
	analysis.Stats.Forms = len(htmlquery.Find(doc, "//form"))

	a.logger.Debug("Page analyzed.",
		zap.String("url", page.URL),
		zap.Int("palette", len(analysis.Palette)),
		zap.Int("headings", len(analysis.Headings)),
		zap.String("checkout", analysis.Targets[models.TargetCheckout]),
	)
	return analysis
}

// ExtractPalette returns the distinct lower-cased hex colors in markup in
// order of first appearance, capped at limit. A non-positive limit means no cap.
func ExtractPalette(markup string, limit int) []string {
	palette := []string{}
	seen := make(map[string]struct{})
	for _, m := range hexColorPattern.FindAllString(markup, -1) {
		c := strings.ToLower(m)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		palette = append(palette, c)
		if limit > 0 && len(palette) == limit {
			break
		}
	}
	return palette
}

// ExtractHeadings collects the trimmed text of the first limit h1/h2 elements
// in document order.
func ExtractHeadings(doc *html.Node, limit int) []string {
	headings := []string{}
	walk(doc, func(n *html.Node) bool {
		if n.Data == "h1" || n.Data == "h2" {
			headings = append(headings, strings.TrimSpace(htmlquery.InnerText(n)))
		}
		return limit <= 0 || len(headings) < limit
	})
	return headings
}

// FindCheckoutSelector looks for the first button or link whose text mentions
// checkout and returns its first class as a selector. The match is a
// heuristic and may pick the wrong element. ok is false when nothing usable
// was found.
func FindCheckoutSelector(doc *html.Node) (selector string, ok bool) {
	var match *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Data != "button" && n.Data != "a" {
			return true
		}
		if strings.Contains(strings.ToLower(htmlquery.InnerText(n)), "checkout") {
			match = n
			return false
		}
		return true
	})
	if match == nil {
		return "", false
	}

	classes := strings.Fields(htmlquery.SelectAttr(match, "class"))
	if len(classes) == 0 {
		return "", false
	}
	return "." + escapeIdent(classes[0]), true
}

// escapeIdent serializes a class name as a CSS identifier using the CSSOM
// rules, so md:w-full becomes md\:w-full.
func escapeIdent(ident string) string {
	var b strings.Builder
	runes := []rune(ident)
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f,
			i == 0 && r >= '0' && r <= '9',
			i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			b.WriteString(`\` + strconv.FormatInt(int64(r), 16) + " ")
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// walk visits element nodes in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func countInlineRules(styles []string) int {
	total := 0
	for _, s := range styles {
		total += len(cssparse.Parse(s).Rules)
	}
	return total
}
