package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/minimax/pkg/minimax/configure"
)

// termUI answers command prompts with huh forms and prints notifications to
// out.
type termUI struct {
	out io.Writer
}

func newTermUI(out io.Writer) *termUI {
	return &termUI{out: out}
}

// Confirm asks a yes/no question. Aborting the form counts as "no".
func (u *termUI) Confirm(ctx context.Context, title, message string) (bool, error) {
	var ok bool

	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Description(message).Value(&ok),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}

	return ok, nil
}

// Input prompts for a single masked line. Aborting the form returns "".
func (u *termUI) Input(ctx context.Context, title, placeholder string) (string, error) {
	var value string

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Description(placeholder).
			EchoMode(huh.EchoModePassword).
			Value(&value),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("input: %w", err)
	}

	return strings.TrimSpace(value), nil
}

// Notify prints message styled by level.
func (u *termUI) Notify(message string, level configure.Level) {
	fmt.Fprintln(u.out, notifyStyle(level).Render(message))
}

func notifyStyle(level configure.Level) lipgloss.Style {
	switch level {
	case configure.LevelWarning:
		return warningStyle
	case configure.LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
