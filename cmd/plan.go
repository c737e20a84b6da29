// File: cmd/plan.go
package cmd

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/morph-cli/internal/brain"
	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/bundle"
	"github.com/xkilldash9x/morph-cli/internal/config"
	"github.com/xkilldash9x/morph-cli/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newPlanCmd creates the `plan` command, which runs the full pipeline over a
// request bundle and prints the BrainOutput.
func newPlanCmd() *cobra.Command {
	var (
		requestPath string
		intentText  string
		scope       []string
		noDrift     bool
	)

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Plans CSS/JS/HTML apply payloads for an edit intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if noDrift {
				cfg.SetBrainDetectDrift(false)
			}

			req, err := loadRequest(requestPath, cmd.InOrStdin(), intentText, scope)
			if err != nil {
				return err
			}

			b := buildBrain(cfg)
			out, err := b.Run(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	planCmd.Flags().StringVarP(&requestPath, "request", "r", "", "request bundle file (.json, .yaml) or '-' for stdin")
	planCmd.Flags().StringVarP(&intentText, "intent", "i", "", "override the bundle's intent text")
	planCmd.Flags().StringSliceVarP(&scope, "scope", "s", nil, "restrict channels (css, js, html)")
	planCmd.Flags().BoolVar(&noDrift, "no-drift", false, "skip live patch drift warnings")
	_ = planCmd.MarkFlagRequired("request")
	return planCmd
}

// newAnalyzeCmd creates the `analyze` command, which prints only the page signals.
func newAnalyzeCmd() *cobra.Command {
	var requestPath string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Prints the page signals extracted from a request bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only the page is read, so intent and profile are not validated.
			req, err := bundle.DecodeFile(requestPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), buildBrain(configFrom(cmd)).Analyze(&req.Page))
		},
	}

	analyzeCmd.Flags().StringVarP(&requestPath, "request", "r", "", "request bundle file (.json, .yaml) or '-' for stdin")
	_ = analyzeCmd.MarkFlagRequired("request")
	return analyzeCmd
}

func buildBrain(cfg config.Interface) *brain.Brain {
	return brain.New(observability.GetLogger(), cfg.Brain())
}

// loadRequest reads the bundle and applies flag overrides before validation.
func loadRequest(path string, stdin io.Reader, intentText string, scope []string) (*models.BrainRequest, error) {
	req, err := bundle.LoadFile(path, stdin, bundle.WithIntentText(intentText), bundle.WithScope(scope))
	if err != nil {
		return nil, err
	}

	observability.GetLogger().Debug("Request bundle loaded.",
		zap.String("url", req.Page.URL),
		zap.Strings("scope", scopeStrings(req.Intent.Scope)),
	)
	return req, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func scopeStrings(scope []models.Channel) []string {
	out := make([]string, len(scope))
	for i, c := range scope {
		out[i] = string(c)
	}
	return out
}
