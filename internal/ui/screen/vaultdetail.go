package screen

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/ui"
	"github.com/rovshanmuradov/vault-browser/internal/ui/component"
	"github.com/rovshanmuradov/vault-browser/internal/ui/router"
	"github.com/rovshanmuradov/vault-browser/internal/ui/style"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// iconsResolvedMsg carries the icons of one vault.
type iconsResolvedMsg struct {
	vaultID string
	network string
	assets  []icon.AssetIcon
}

// VaultDetailScreen shows one vault with raw values and resolved icons.
type VaultDetailScreen struct {
	deps   Deps
	width  int
	height int
	keyMap ui.KeyMap

	helpBar *component.HelpBar
	spinner spinner.Model

	vault    vault.Vault
	removed  bool // the vault left the catalog on a refresh
	network  string
	assets   []icon.AssetIcon
	resolved bool

	styles style.Styles
}

// NewVaultDetailScreen creates the detail screen for v.
func NewVaultDetailScreen(v vault.Vault, deps Deps) *VaultDetailScreen {
	deps = deps.withDefaults()
	keyMap := ui.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &VaultDetailScreen{
		deps:    deps,
		keyMap:  keyMap,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteVaultDetail)),
		spinner: sp,
		vault:   v,
		styles:  style.NewStyles(style.DefaultPalette()),
	}
}

// Init resolves the icons in the background
func (s *VaultDetailScreen) Init() tea.Cmd {
	if s.deps.Resolver == nil {
		s.resolved = true
		return nil
	}
	return tea.Batch(s.spinner.Tick, s.resolveCmd())
}

func (s *VaultDetailScreen) resolveCmd() tea.Cmd {
	resolver, timeout, v := s.deps.Resolver, s.deps.timeout(), s.vault
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return iconsResolvedMsg{
			vaultID: v.ID,
			network: resolver.ResolveNetwork(ctx, v.Chain),
			assets:  resolver.ResolveAssets(ctx, v.Chain, v.Assets),
		}
	}
}

// Update handles screen updates
func (s *VaultDetailScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, s.keyMap.Quit) {
			return s, tea.Quit
		}

	case spinner.TickMsg:
		if s.resolved {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case iconsResolvedMsg:
		if msg.vaultID == s.vault.ID {
			s.network = msg.network
			s.assets = msg.assets
			s.resolved = true
		}

	case ui.VaultsLoadedMsg:
		if msg.Err != nil || msg.Snapshot == nil {
			return s, nil
		}
		if v, ok := msg.Snapshot.Find(s.vault.ID); ok {
			s.vault = v
			s.removed = false
		} else {
			s.removed = true
		}
	}

	return s, nil
}

// Vault returns the vault shown.
func (s *VaultDetailScreen) Vault() vault.Vault {
	return s.vault
}

// View renders the detail screen
func (s *VaultDetailScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	v := s.vault
	var content strings.Builder

	content.WriteString(s.styles.Title.Render(v.Name))
	content.WriteString("\n")
	content.WriteString(s.styles.Muted.Render(" " + (ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: v.ID}).Path()))
	content.WriteString("\n")
	if s.removed {
		content.WriteString(s.styles.Warning.Render(" This vault is no longer listed."))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	info := []string{
		s.field("Chain", v.Chain),
		s.field("Category", orDash(v.Category)),
		s.field("Assets", orDash(strings.Join(v.Assets, ", "))),
		s.field("Tags", s.renderTags(v.Tags)),
	}
	content.WriteString(s.styles.Panel.Render(strings.Join(info, "\n")))
	content.WriteString("\n")

	metrics := []string{
		s.metric(vault.FieldAPY, v.APY),
		s.metric(vault.FieldDaily, v.Daily),
		s.metric(vault.FieldTVL, v.TVL),
	}
	content.WriteString(s.styles.Panel.Render(strings.Join(metrics, "\n")))
	content.WriteString("\n")

	content.WriteString(s.styles.Panel.Render(s.renderIcons()))
	content.WriteString("\n")

	content.WriteString(s.helpBar.View())
	return content.String()
}

func (s *VaultDetailScreen) field(label, value string) string {
	return s.styles.Label.Render(fmt.Sprintf("%-10s", label)) + value
}

// metric shows the formatted value with the raw value next to it.
func (s *VaultDetailScreen) metric(f vault.Field, v vault.Value) string {
	raw := "absent"
	if !v.IsAbsent() {
		raw = fmt.Sprintf("%q", v.String())
		if _, isText := v.RawValue().(string); !isText {
			raw = v.String()
		}
	}
	return s.styles.Label.Render(fmt.Sprintf("%-12s", f.String())) +
		s.styles.Yield.Render(fmt.Sprintf("%14s", displayValue(f, v))) +
		s.styles.Muted.Render("  raw "+raw)
}

func (s *VaultDetailScreen) renderTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	rendered := make([]string, len(tags))
	for i, tag := range tags {
		tagStyle := s.styles.Tag
		if tag == vault.TagEOL {
			tagStyle = tagStyle.Background(style.DefaultPalette().EOL)
		}
		rendered[i] = tagStyle.Render(tag)
	}
	return strings.Join(rendered, " ")
}

func (s *VaultDetailScreen) renderIcons() string {
	if s.deps.Resolver == nil {
		return s.styles.Muted.Render("Icon lookup is disabled.")
	}
	if !s.resolved {
		return s.spinner.View() + " Resolving icons..."
	}

	lines := []string{s.field("Network", s.network)}
	for _, a := range s.assets {
		p := a.Placement
		lines = append(lines, s.field(a.Symbol, a.URI)+
			s.styles.Muted.Render(fmt.Sprintf("  %dpx at (%d,%d) z%d", p.Size, p.OffsetX, p.OffsetY, p.Z)))
	}
	if hidden := len(s.vault.Assets) - len(s.assets); hidden > 0 {
		lines = append(lines, s.styles.Muted.Render(fmt.Sprintf("+%d more assets without icons", hidden)))
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SetSize sets the screen dimensions
func (s *VaultDetailScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}
