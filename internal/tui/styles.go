package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/types"
)

// Palette holds the colors of one theme.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Text      lipgloss.Color
	Subtext   lipgloss.Color
	Border    lipgloss.Color
}

var (
	// Dracula
	DarkPalette = Palette{
		Primary:   lipgloss.Color("#bd93f9"),
		Secondary: lipgloss.Color("#ff79c6"),
		Success:   lipgloss.Color("#50fa7b"),
		Error:     lipgloss.Color("#ff5555"),
		Warning:   lipgloss.Color("#ffb86c"),
		Text:      lipgloss.Color("#f8f8f2"),
		Subtext:   lipgloss.Color("#6272a4"),
		Border:    lipgloss.Color("#44475a"),
	}

	LightPalette = Palette{
		Primary:   lipgloss.Color("#6f42c1"),
		Secondary: lipgloss.Color("#d63384"),
		Success:   lipgloss.Color("#198754"),
		Error:     lipgloss.Color("#dc3545"),
		Warning:   lipgloss.Color("#b35c00"),
		Text:      lipgloss.Color("#212529"),
		Subtext:   lipgloss.Color("#6c757d"),
		Border:    lipgloss.Color("#ced4da"),
	}
)

// PaletteFor resolves a theme setting. The adaptive theme asks the terminal.
func PaletteFor(theme int) Palette {
	switch theme {
	case config.ThemeLight:
		return LightPalette
	case config.ThemeDark:
		return DarkPalette
	}
	if termenv.HasDarkBackground() {
		return DarkPalette
	}
	return LightPalette
}

// Styles are the lipgloss styles derived from a Palette.
type Styles struct {
	Palette Palette

	Title       lipgloss.Style
	Subtle      lipgloss.Style
	Headline    lipgloss.Style
	Paused      lipgloss.Style
	Idle        lipgloss.Style
	Selected    lipgloss.Style
	Item        lipgloss.Style
	KeyEnabled  lipgloss.Style
	KeyDisabled lipgloss.Style
	Online      lipgloss.Style
	Offline     lipgloss.Style
	Info        lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
}

func NewStyles(p Palette) Styles {
	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Padding(DefaultPaddingY, DefaultPaddingX),

		Subtle: lipgloss.NewStyle().Foreground(p.Subtext),

		Headline: lipgloss.NewStyle().Foreground(p.Success).Bold(true),
		Paused:   lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Idle:     lipgloss.NewStyle().Foreground(p.Subtext).Italic(true),

		Selected: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Bold(true),

		Item: lipgloss.NewStyle().Foreground(p.Text),

		KeyEnabled:  lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		KeyDisabled: lipgloss.NewStyle().Foreground(p.Border).Strikethrough(true),

		Online:  lipgloss.NewStyle().Foreground(p.Success),
		Offline: lipgloss.NewStyle().Foreground(p.Error),

		Info:    lipgloss.NewStyle().Foreground(p.Text),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
	}
}

// LogLine renders a log entry colored by level.
func (s Styles) LogLine(e types.LogEntry) string {
	switch e.Level {
	case types.LevelError:
		return s.Error.Render(e.String())
	case types.LevelWarning:
		return s.Warning.Render(e.String())
	default:
		return s.Info.Render(e.String())
	}
}
