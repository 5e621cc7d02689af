// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/sambadstubner/pipeup-cli/authapi"
	"github.com/sambadstubner/pipeup-cli/bootstrap"
	"github.com/sambadstubner/pipeup-cli/lib/export"
)

// ANSI 256-color codes.
var (
	summaryTitleColor  = lipgloss.Color("42")
	summaryLabelColor  = lipgloss.Color("245")
	summaryValueColor  = lipgloss.Color("252")
	summaryWarnColor   = lipgloss.Color("214")
	summaryBorderColor = lipgloss.Color("240")
)

// renderSummary draws the human-readable result box shown on a terminal.
// The token appears only as its prefix.
func renderSummary(w io.Writer, result *bootstrap.Result, payload export.Payload, envFile string) string {
	renderer := lipgloss.NewRenderer(w)
	title := renderer.NewStyle().Bold(true).Foreground(summaryTitleColor)
	label := renderer.NewStyle().Foreground(summaryLabelColor).Width(12)
	value := renderer.NewStyle().Foreground(summaryValueColor)
	warn := renderer.NewStyle().Foreground(summaryWarnColor)
	box := renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(summaryBorderColor).
		Padding(0, 1)

	row := func(name, text string, style lipgloss.Style) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(name), style.Render(text))
	}

	account, accountStyle := "created", value
	switch {
	case result.Registered:
	case authapi.IsConflict(result.RegistrationError):
		account = "already existed"
	default:
		account, accountStyle = "registration failed (ignored)", warn
	}

	lines := []string{
		title.Render(export.EnvToken + " ready"),
		row("email", result.Email, value),
		row("username", result.Username, value),
		row("account", account, accountStyle),
		row("token", result.Token.Prefix(), value),
		row("token name", result.Token.Name, value),
	}
	if payload.StreamURL != "" {
		lines = append(lines, row("stream url", payload.StreamURL, value))
	}
	if envFile != "" {
		lines = append(lines, row("env file", envFile, value))
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
