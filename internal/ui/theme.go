package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lifequest theme (CLI + TUI).

const (
	IconQuest       = "🗺️"
	IconSparkle     = "✨"
	IconPlus        = "➕"
	IconDone        = "✅"
	IconTrophy      = "🏆"
	IconBolt        = "⚡"
	IconInfo        = "ℹ️"
	IconWarn        = "⚠️"
	IconError       = "🧨"
	IconLoop        = "🔁"
	IconPeople      = "👥"
	IconFlag        = "🏁"
	IconLock        = "🔒"
	IconFire        = "🔥"
	IconCalendar    = "📅"
	IconPlaceholder = "•"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	barFilled = lipgloss.NewStyle().Foreground(cGood)
	barEmpty  = lipgloss.NewStyle().Foreground(cMuted)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

var categoryIcons = map[string]string{
	"physical":      "💪",
	"mental":        "🧠",
	"intellectual":  "📚",
	"spiritual":     "🧘",
	"financial":     "💰",
	"career":        "💼",
	"relationships": "🤝",
}

// CategoryIcon returns the emoji for a category name.
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[strings.ToLower(category)]; ok {
		return icon
	}
	return IconPlaceholder
}

// KindIcon returns the emoji for a task kind.
func KindIcon(kind string) string {
	switch kind {
	case "habit":
		return IconLoop
	case "routine":
		return IconPeople
	case "challenge":
		return IconFlag
	default:
		return IconQuest
	}
}

// ProgressBar renders ratio (0..1) as a bar of width cells.
func ProgressBar(ratio float64, width int) string {
	if width < 3 {
		width = 3
	}
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return barFilled.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}

// Percent formats ratio (0..1) as a whole percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%3.0f%%", ratio*100)
}
