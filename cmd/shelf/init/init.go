// Package initcmder provides the init command for initializing a local .shelf
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/shelf/pkg/cliui"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/dotdir"
)

// remotePresetTimeout bounds fetching a preset from a URL.
const remotePresetTimeout = 30 * time.Second

const initLongDesc string = `Initialize a new .shelf/ directory in the current working directory.

Creates a local .shelf/ directory that takes precedence over ~/.shelf/ for
configuration, credentials and chat history, and writes a config.toml.

Use --preset to point every AI provider at one vendor, or to fetch a
config.toml from an http(s) URL. Available presets: openai, gemini,
anthropic, ollama.

Examples:
  shelf init
  shelf init --preset openai
  shelf init --preset https://example.com/shelf/config.toml`

const initShortDesc string = "Initialize a local .shelf/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset name or URL of a config.toml")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dotdir.DirName)

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fmt.Fprintf(out, "\n  %s Already initialized: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
		if preset == "" {
			fmt.Fprintln(out)
			return nil
		}
	}

	cfg, err := resolvePreset(ctx, preset)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .shelf directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// An existing config is kept unless a preset was asked for.
	if _, err := os.Stat(cfger.GetTarget()); err == nil && preset == "" {
		fmt.Fprintf(out, "\n  %s Initialized %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
		return nil
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	fmt.Fprintf(out, "  %s %s  %s %s  %s %s\n\n",
		cliui.KeyStyle.Render("llm:"), cliui.ValueStyle.Render(cfg.LLM.Provider),
		cliui.KeyStyle.Render("embedding:"), cliui.ValueStyle.Render(cfg.Embedding.Provider),
		cliui.KeyStyle.Render("image:"), cliui.ValueStyle.Render(cfg.Image.Provider),
	)
	return nil
}

func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchPreset(ctx, preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchPreset(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remotePresetTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating preset request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching preset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching preset: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("remote preset is empty")
	}

	return config.ParseConfigTOML(data)
}
