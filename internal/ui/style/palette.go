package style

import "github.com/charmbracelet/lipgloss"

var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent / headers
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Yields / success
	Red     = lipgloss.Color("#FF5555") // Errors
	Blue    = lipgloss.Color("#3B82F6") // Info / links

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Yield  lipgloss.Color // APY and daily columns
	EOL    lipgloss.Color // retired vaults
	Paused lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Yield:  Green,
		EOL:    Base01,
		Paused: Yellow,
	}
}

// Styles are the text styles shared by the screens.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Yield   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Tag     lipgloss.Style
	Panel   lipgloss.Style
}

// NewStyles derives the shared styles from a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Padding(0, 1),
		Label:   lipgloss.NewStyle().Foreground(p.TextSecondary),
		Value:   lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(p.TextMuted),
		Yield:   lipgloss.NewStyle().Foreground(p.Yield),
		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Tag: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Secondary).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.TextMuted).
			Padding(0, 1),
	}
}
