package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/minimax/pkg/engine"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
)

// defaultConfigPath is used when -config is not given and the file exists.
const defaultConfigPath = "minimax.yaml"

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// resolveConfigPath returns the config file to use: the explicit -config flag,
// else minimax.yaml in the working directory.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	return defaultConfigPath
}

// loadConfig loads path on top of the defaults. A missing file is only an
// error when it was named explicitly.
func loadConfig(path string, explicit bool) (engine.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return engine.DefaultConfig(), nil
		}

		return engine.Config{}, fmt.Errorf("config: %w", err)
	}

	return engine.LoadConfig(path)
}

// mdRenderer renders markdown to terminal-formatted output.
var mdRenderer *glamour.TermRenderer

func initMarkdownRenderer(width int) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	mdRenderer = r
}

// renderMarkdown converts markdown text to terminal-formatted output.
func renderMarkdown(text string) string {
	if mdRenderer == nil {
		return text
	}
	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// truncate shortens s to at most width terminal cells, appending "..." when
// it was cut. Newlines are replaced with spaces for single-line display.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
