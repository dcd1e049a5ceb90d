// Package ui provides terminal styling for groom CLI output.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Semantic status colors, adaptive for light/dark terminals
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	KeyStyle    = lipgloss.NewStyle().Bold(true)
)

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string { return PassStyle.Render(s) }

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string { return WarnStyle.Render(s) }

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string { return FailStyle.Render(s) }

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string { return MutedStyle.Render(s) }

// RenderHeader renders a bold section header
func RenderHeader(s string) string { return HeaderStyle.Render(s) }

// RenderKey renders an issue key in bold
func RenderKey(s string) string { return KeyStyle.Render(s) }
