// File: internal/bundle/bundle_test.go
package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/morph-cli/internal/brain/models"
)

const jsonBundle = `{
  "userProfile": {"userId": "u-1", "brandColors": ["#123456"], "fontPreferences": []},
  "page": {"url": "https://shop.example/cart", "origin": "https://shop.example", "html": "<div class=\"a\">x</div>"},
  "intent": {"text": "make checkout sticky", "scope": ["CSS", "js"]},
  "siteProfile": {"origin": "https://shop.example", "version": 2, "cssPatch": ".a{}"}
}`

const yamlBundle = `
userProfile:
  userId: u-2
  riskLevel: high
page:
  url: https://shop.example/
  origin: https://shop.example
  html: "<h1>Hi</h1>"
intent:
  text: insert a banner
`

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("req.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("REQ.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("req.json"))
	assert.Equal(t, FormatJSON, FormatForPath("req"))
}

func TestLoad_JSON(t *testing.T) {
	req, err := Load(strings.NewReader(jsonBundle), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "u-1", req.UserProfile.UserID)
	assert.Equal(t, []string{"#123456"}, req.UserProfile.BrandColors)
	assert.Equal(t, models.RiskMedium, req.UserProfile.RiskLevel, "risk defaults to medium")
	assert.Equal(t, `<div class="a">x</div>`, req.Page.HTML)
	assert.Equal(t, []models.Channel{models.ChannelCSS, models.ChannelJS}, req.Intent.Scope, "scope is normalized")
	require.NotNil(t, req.SiteProfile)
	assert.Equal(t, 2, req.SiteProfile.Version)
	assert.Equal(t, ".a{}", req.SiteProfile.CSSPatch)
}

func TestLoad_YAML(t *testing.T) {
	req, err := Load(strings.NewReader(yamlBundle), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "u-2", req.UserProfile.UserID)
	assert.Equal(t, models.RiskHigh, req.UserProfile.RiskLevel)
	assert.Equal(t, "insert a banner", req.Intent.Text)
	assert.Nil(t, req.Intent.Scope)
	assert.Nil(t, req.SiteProfile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "missing everything",
			input:    `{}`,
			contains: []string{"userProfile.userId", "page.url", "page.origin", "intent.text"},
		},
		{
			name:     "bad risk",
			input:    `{"userProfile":{"userId":"u","riskLevel":"extreme"},"page":{"url":"u","origin":"o"},"intent":{"text":"t"}}`,
			contains: []string{"extreme"},
		},
		{
			name:     "bad scope",
			input:    `{"userProfile":{"userId":"u"},"page":{"url":"u","origin":"o"},"intent":{"text":"t","scope":["svg"]}}`,
			contains: []string{"intent.scope[0]", "svg"},
		},
		{
			name:     "bad brand color",
			input:    `{"userProfile":{"userId":"u","brandColors":["#abc","red; } body{display:none"]},"page":{"url":"u","origin":"o"},"intent":{"text":"t"}}`,
			contains: []string{"userProfile.brandColors[1]", "not a hex color"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			for _, c := range tt.contains {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("{"), FormatJSON)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRequest)

	_, err = Decode(strings.NewReader("{}"), Format("toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}

func TestDecode_DoesNotValidate(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"intent":{"text":""}}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, req.Intent.Text)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "req.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonBundle), 0o600))
	req, err := LoadFile(jsonPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "u-1", req.UserProfile.UserID)

	yamlPath := filepath.Join(dir, "req.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlBundle), 0o600))
	req, err = LoadFile(yamlPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "u-2", req.UserProfile.UserID)

	_, err = LoadFile(filepath.Join(dir, "missing.json"), nil)
	assert.Error(t, err)
}

func TestLoadFile_Stdin(t *testing.T) {
	req, err := LoadFile("-", strings.NewReader(jsonBundle))
	require.NoError(t, err, "stdin accepts JSON through the YAML decoder")
	assert.Equal(t, "u-1", req.UserProfile.UserID)

	req, err = LoadFile("-", strings.NewReader(yamlBundle))
	require.NoError(t, err)
	assert.Equal(t, "u-2", req.UserProfile.UserID)
}

func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBundle), 0o600))

	req, err := LoadFile(path, nil, WithIntentText("hide the newsletter modal"), WithScope([]string{"JS", "html"}))
	require.NoError(t, err)
	assert.Equal(t, "hide the newsletter modal", req.Intent.Text)
	assert.Equal(t, []models.Channel{models.ChannelJS, models.ChannelHTML}, req.Intent.Scope)

	req, err = LoadFile(path, nil, WithIntentText(""), WithScope(nil))
	require.NoError(t, err)
	assert.Equal(t, "insert a banner", req.Intent.Text, "empty overrides keep the bundle values")
	assert.Nil(t, req.Intent.Scope)

	_, err = Load(strings.NewReader(yamlBundle), FormatYAML, WithScope([]string{"svg"}))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLoad_OverrideFillsMissingIntent(t *testing.T) {
	input := `{"userProfile":{"userId":"u"},"page":{"url":"u","origin":"o"},"intent":{"text":""}}`

	_, err := Load(strings.NewReader(input), FormatJSON)
	require.ErrorIs(t, err, ErrInvalidRequest)

	req, err := Load(strings.NewReader(input), FormatJSON, WithIntentText("insert a banner"))
	require.NoError(t, err)
	assert.Equal(t, "insert a banner", req.Intent.Text)
}
