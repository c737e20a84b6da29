// File: internal/bundle/bundle.go
package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/morph-cli/internal/brain/models"
)

// ErrInvalidRequest wraps every validation failure of a request bundle.
var ErrInvalidRequest = errors.New("invalid request bundle")

// Format is the encoding of a request bundle.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatForPath infers the bundle format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a request bundle without validating it.
func Decode(r io.Reader, format Format) (*models.BrainRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request bundle: %w", err)
	}

	var req models.BrainRequest
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &req)
	case FormatJSON, "":
		err = json.Unmarshal(data, &req)
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s request bundle: %w", format, err)
	}
	return &req, nil
}

// Override adjusts a decoded request before it is validated.
type Override func(*models.BrainRequest)

// WithIntentText replaces the intent text. An empty text keeps the bundle's.
func WithIntentText(text string) Override {
	return func(req *models.BrainRequest) {
		if text != "" {
			req.Intent.Text = text
		}
	}
}

// WithScope replaces the intent scope. Names are checked by Normalize.
func WithScope(scope []string) Override {
	return func(req *models.BrainRequest) {
		if len(scope) == 0 {
			return
		}
		req.Intent.Scope = make([]models.Channel, 0, len(scope))
		for _, s := range scope {
			req.Intent.Scope = append(req.Intent.Scope, models.Channel(s))
		}
	}
}

// Load decodes a request bundle, applies overrides in order and validates the result.
func Load(r io.Reader, format Format, overrides ...Override) (*models.BrainRequest, error) {
	req, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return finish(req, overrides)
}

// DecodeFile reads a bundle from path, or from stdin when path is "-" (decoded
// as YAML, which also accepts JSON). The bundle is not validated.
func DecodeFile(path string, stdin io.Reader) (*models.BrainRequest, error) {
	if path == "-" {
		return Decode(stdin, FormatYAML)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request bundle: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}

// LoadFile is DecodeFile followed by the overrides and Normalize.
func LoadFile(path string, stdin io.Reader, overrides ...Override) (*models.BrainRequest, error) {
	req, err := DecodeFile(path, stdin)
	if err != nil {
		return nil, err
	}
	return finish(req, overrides)
}

func finish(req *models.BrainRequest, overrides []Override) (*models.BrainRequest, error) {
	for _, o := range overrides {
		o(req)
	}
	if err := Normalize(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Normalize fills defaults and checks required fields.
func Normalize(req *models.BrainRequest) error {
	var problems []error
	if strings.TrimSpace(req.UserProfile.UserID) == "" {
		problems = append(problems, errors.New("userProfile.userId is required"))
	}
	if req.UserProfile.RiskLevel == "" {
		req.UserProfile.RiskLevel = models.RiskMedium
	} else if !req.UserProfile.RiskLevel.Valid() {
		problems = append(problems, fmt.Errorf("userProfile.riskLevel %q must be low, medium or high", req.UserProfile.RiskLevel))
	}
	for i, c := range req.UserProfile.BrandColors {
		if !models.ValidHexColor(c) {
			problems = append(problems, fmt.Errorf("userProfile.brandColors[%d] %q is not a hex color", i, c))
		}
	}
	if strings.TrimSpace(req.Page.URL) == "" {
		problems = append(problems, errors.New("page.url is required"))
	}
	if strings.TrimSpace(req.Page.Origin) == "" {
		problems = append(problems, errors.New("page.origin is required"))
	}
	if strings.TrimSpace(req.Intent.Text) == "" {
		problems = append(problems, errors.New("intent.text is required"))
	}
	for i, s := range req.Intent.Scope {
		c, err := models.ParseChannel(string(s))
		if err != nil {
			problems = append(problems, fmt.Errorf("intent.scope[%d]: %w", i, err))
			continue
		}
		req.Intent.Scope[i] = c
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(problems...))
	}
	return nil
}
