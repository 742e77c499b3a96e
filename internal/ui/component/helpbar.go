package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/vault-browser/internal/ui/style"
)

// HelpBar shows the enabled key bindings of a screen, wrapped to its width.
type HelpBar struct {
	keyBindings []key.Binding
	width       int

	keyStyle       lipgloss.Style
	descStyle      lipgloss.Style
	sepStyle       lipgloss.Style
	containerStyle lipgloss.Style
}

// NewHelpBar creates a new help bar component
func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()

	return &HelpBar{
		width: 80,

		keyStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		sepStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		containerStyle: lipgloss.NewStyle().
			Padding(0, 1),
	}
}

// SetKeyBindings sets the key bindings to display
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.keyBindings = bindings
	return h
}

// SetWidth sets the help bar width
func (h *HelpBar) SetWidth(width int) *HelpBar {
	if width > 0 {
		h.width = width
	}
	return h
}

// View renders the help bar
func (h *HelpBar) View() string {
	items := make([]string, 0, len(h.keyBindings))
	for _, binding := range h.keyBindings {
		help := binding.Help()
		if !binding.Enabled() || help.Key == "" || help.Desc == "" {
			continue
		}
		items = append(items, h.keyStyle.Render(help.Key)+" "+h.descStyle.Render(help.Desc))
	}
	if len(items) == 0 {
		return ""
	}

	separator := h.sepStyle.Render(" • ")
	content := wrap(items, h.width-2, separator)
	return h.containerStyle.Width(h.width).Render(content)
}

// wrap joins items with separator, starting a new line before an item that
// would overflow maxWidth.
func wrap(items []string, maxWidth int, separator string) string {
	var lines []string
	var line []string
	lineWidth := 0
	sepWidth := lipgloss.Width(separator)

	for _, item := range items {
		itemWidth := lipgloss.Width(item) + sepWidth
		if lineWidth+itemWidth > maxWidth && len(line) > 0 {
			lines = append(lines, strings.Join(line, separator))
			line = nil
			lineWidth = 0
		}
		line = append(line, item)
		lineWidth += itemWidth
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, separator))
	}

	return strings.Join(lines, "\n")
}
