package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/vault-browser/internal/logger"
	"github.com/rovshanmuradov/vault-browser/internal/ui/style"
)

// logPanelEntries is how many of the newest buffered entries the panel reads.
const logPanelEntries = 50

// LogPanel shows the newest log entries of a LogBuffer, newest at the bottom.
type LogPanel struct {
	buffer     *logger.LogBuffer
	viewport   viewport.Model
	showDebug  bool
	visible    bool
	width      int
	height     int
	containerS lipgloss.Style
	titleS     lipgloss.Style
	timeS      lipgloss.Style
	levelS     map[string]lipgloss.Style
}

// NewLogPanel creates a hidden panel over buffer.
func NewLogPanel(buffer *logger.LogBuffer) *LogPanel {
	palette := style.DefaultPalette()

	return &LogPanel{
		buffer:   buffer,
		viewport: viewport.New(50, 4),
		containerS: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),
		titleS: lipgloss.NewStyle().Foreground(palette.Info).Bold(true),
		timeS:  lipgloss.NewStyle().Foreground(palette.TextMuted),
		levelS: map[string]lipgloss.Style{
			"error": lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
			"warn":  lipgloss.NewStyle().Foreground(palette.Warning).Bold(true),
			"info":  lipgloss.NewStyle().Foreground(palette.Text),
			"debug": lipgloss.NewStyle().Foreground(palette.TextMuted),
		},
	}
}

// SetSize sets the outer dimensions of the panel.
func (p *LogPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	// border (2) and padding (2) horizontally, border and title vertically
	p.viewport.Width = max(10, width-4)
	p.viewport.Height = max(2, height-3)
}

// Toggle shows or hides the panel.
func (p *LogPanel) Toggle() {
	p.visible = !p.visible
}

// Visible reports whether the panel is shown.
func (p *LogPanel) Visible() bool {
	return p.visible
}

// SetShowDebug includes debug entries.
func (p *LogPanel) SetShowDebug(show bool) {
	p.showDebug = show
}

// Height returns the rows the panel occupies, zero when hidden.
func (p *LogPanel) Height() int {
	if !p.visible {
		return 0
	}
	return p.height
}

// View renders the panel
func (p *LogPanel) View() string {
	if !p.visible {
		return ""
	}
	p.refresh()

	title := p.titleS.Render("Recent logs")
	content := lipgloss.JoinVertical(lipgloss.Left, title, p.viewport.View())
	return p.containerS.Width(max(0, p.width-2)).Render(content)
}

func (p *LogPanel) refresh() {
	if p.buffer == nil {
		p.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range p.buffer.GetRecentLogs(logPanelEntries) {
		level := normalizeLevel(entry.Level)
		if level == "debug" && !p.showDebug {
			continue
		}
		lines = append(lines, p.format(level, entry))
	}

	if len(lines) == 0 {
		p.viewport.SetContent("No log entries yet")
		return
	}
	p.viewport.SetContent(strings.Join(lines, "\n"))
	p.viewport.GotoBottom()
}

func (p *LogPanel) format(level string, entry logger.LogEntry) string {
	levelStyle, ok := p.levelS[level]
	if !ok {
		levelStyle = p.levelS["info"]
	}
	return fmt.Sprintf("%s %s",
		p.timeS.Render(entry.Timestamp.Format("15:04:05")),
		levelStyle.Render(fmt.Sprintf("%-5s %s", strings.ToUpper(level), entry.Message)))
}

func normalizeLevel(level string) string {
	switch l := strings.ToLower(level); l {
	case "warning":
		return "warn"
	case "dpanic", "panic", "fatal":
		return "error"
	default:
		return l
	}
}
