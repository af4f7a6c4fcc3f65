// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	// ColorPrimary is purple - titles and mod names.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - secondary text and empty placeholders.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green - applied files and completed edits.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber - conflicts and skipped documents.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue - group kinds, keys and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray - editor events in verbose mode.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and mod names.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for completed edits and values.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error prefixes.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for conflicts and warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for keys, kinds and command names.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for editor events.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// indexStyle right-aligns list indices.
	indexStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(4).
			Align(lipgloss.Right)
)
