package screen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/export"
	"github.com/rovshanmuradov/vault-browser/internal/numeric"
	"github.com/rovshanmuradov/vault-browser/internal/ui"
	"github.com/rovshanmuradov/vault-browser/internal/ui/component"
	"github.com/rovshanmuradov/vault-browser/internal/ui/router"
	"github.com/rovshanmuradov/vault-browser/internal/ui/style"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeMinTVL
	modeChains
)

// VaultListScreen shows the filtered and sorted vault list.
type VaultListScreen struct {
	deps   Deps
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	helpBar *component.HelpBar
	table   *component.Table
	logs    *component.LogPanel
	spinner spinner.Model
	input   textinput.Model

	// State
	snapshot    *vault.Snapshot
	criteria    vault.Criteria
	sort        vault.SortState
	visible     []vault.Vault
	categoryIdx int // -1 shows every category
	chainCursor int
	mode        inputMode
	previous    vault.Criteria // restored when an input is cancelled
	loading     bool
	err         error
	status      string

	styles   style.Styles
	eolStyle lipgloss.Style
}

// NewVaultListScreen creates the list screen on top of the current catalog.
func NewVaultListScreen(deps Deps) *VaultListScreen {
	deps = deps.withDefaults()
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 64

	s := &VaultListScreen{
		deps:     deps,
		keyMap:   keyMap,
		helpBar:  component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteVaultList)),
		table:    component.NewTable(),
		logs:     component.NewLogPanel(deps.Logs),
		spinner:  sp,
		input:    input,
		snapshot: deps.Catalog.Snapshot(),
		criteria: deps.Criteria,
		sort:     vault.Unsorted(),
		styles:   style.NewStyles(palette),
		eolStyle: lipgloss.NewStyle().Foreground(palette.EOL).Padding(0, 1),
	}
	s.categoryIdx = slices.Index(s.snapshot.Categories(), s.criteria.Category)
	s.recompute()

	return s
}

// Init starts the first fetch
func (s *VaultListScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(s.spinner.Tick, s.fetchCmd())
}

// Update handles screen updates
func (s *VaultListScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s, s.handleKey(msg)

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case ui.VaultsLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.err = msg.Err
			return s, nil
		}
		if msg.Snapshot != nil {
			s.err = nil
			s.setSnapshot(msg.Snapshot)
		}

	case ui.ExportedMsg:
		if msg.Err != nil {
			s.err = fmt.Errorf("export failed: %w", msg.Err)
		} else {
			s.err = nil
			s.status = "Exported to " + msg.Path
		}

	case ui.ErrorMsg:
		s.err = msg.Error

	case ui.SuccessMsg:
		s.status = msg.Message
	}

	return s, nil
}

func (s *VaultListScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch s.mode {
	case modeSearch, modeMinTVL:
		return s.handleInputKey(msg)
	case modeChains:
		s.handleChainKey(msg)
		return nil
	}

	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return tea.Quit

	case key.Matches(msg, s.keyMap.Up):
		s.table.MoveUp()

	case key.Matches(msg, s.keyMap.Down):
		s.table.MoveDown()

	case key.Matches(msg, s.keyMap.Enter):
		if v, ok := s.Selected(); ok {
			return func() tea.Msg {
				return ui.RouterMsg{To: ui.RouteVaultDetail, VaultID: v.ID}
			}
		}

	case key.Matches(msg, s.keyMap.Search):
		return s.beginInput(modeSearch, s.criteria.Search, "vault name")

	case key.Matches(msg, s.keyMap.MinTVL):
		var current string
		if s.criteria.MinimumTVL != 0 {
			current = fmt.Sprint(s.criteria.MinimumTVL)
		}
		return s.beginInput(modeMinTVL, current, "minimum TVL, e.g. $250,000")

	case key.Matches(msg, s.keyMap.Chains):
		if len(s.snapshot.Chains()) > 0 {
			s.mode = modeChains
			s.chainCursor = 0
		}

	case key.Matches(msg, s.keyMap.Category):
		s.cycleCategory()

	case key.Matches(msg, s.keyMap.ToggleEOL):
		s.criteria.ShowEOL = !s.criteria.ShowEOL
		s.recompute()

	case key.Matches(msg, s.keyMap.SortAPY):
		s.activate(vault.FieldAPY)

	case key.Matches(msg, s.keyMap.SortDaily):
		s.activate(vault.FieldDaily)

	case key.Matches(msg, s.keyMap.SortTVL):
		s.activate(vault.FieldTVL)

	case key.Matches(msg, s.keyMap.Refresh):
		if !s.loading {
			s.loading = true
			s.status = ""
			return tea.Batch(s.spinner.Tick, s.fetchCmd())
		}

	case key.Matches(msg, s.keyMap.Export):
		return s.exportCmd()

	case key.Matches(msg, s.keyMap.Reset):
		s.criteria = s.deps.Criteria
		s.sort = vault.Unsorted()
		s.categoryIdx = slices.Index(s.snapshot.Categories(), s.criteria.Category)
		s.status = "Filters reset"
		s.recompute()

	case key.Matches(msg, s.keyMap.Logs):
		s.logs.Toggle()
		s.resize()
	}

	return nil
}

func (s *VaultListScreen) beginInput(mode inputMode, value, placeholder string) tea.Cmd {
	s.mode = mode
	s.previous = s.criteria
	s.input.Reset()
	s.input.Placeholder = placeholder
	s.input.SetValue(value)
	s.input.CursorEnd()
	return s.input.Focus()
}

func (s *VaultListScreen) endInput() {
	s.mode = modeBrowse
	s.input.Blur()
}

// handleInputKey edits the search or minimum TVL. The search applies on
// every keystroke; the minimum TVL on enter.
func (s *VaultListScreen) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		s.criteria = s.previous
		s.endInput()
		s.recompute()
		return nil

	case tea.KeyEnter:
		if s.mode == modeMinTVL {
			s.criteria.MinimumTVL = numeric.Coerce(s.input.Value())
		} else {
			s.criteria.Search = s.input.Value()
		}
		s.endInput()
		s.recompute()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.mode == modeSearch && s.input.Value() != s.criteria.Search {
		s.criteria.Search = s.input.Value()
		s.recompute()
	}
	return cmd
}

func (s *VaultListScreen) handleChainKey(msg tea.KeyMsg) {
	chains := s.snapshot.Chains()

	switch {
	case key.Matches(msg, s.keyMap.Up):
		s.chainCursor = max(0, s.chainCursor-1)

	case key.Matches(msg, s.keyMap.Down):
		s.chainCursor = min(len(chains)-1, s.chainCursor+1)

	case key.Matches(msg, s.keyMap.Toggle):
		if s.chainCursor < len(chains) {
			s.toggleChain(chains[s.chainCursor])
		}

	case key.Matches(msg, s.keyMap.Enter), key.Matches(msg, s.keyMap.Back), key.Matches(msg, s.keyMap.Chains):
		s.mode = modeBrowse
	}
}

func (s *VaultListScreen) toggleChain(chain string) {
	if slices.Contains(s.criteria.Chains, chain) {
		s.criteria.Chains = slices.DeleteFunc(slices.Clone(s.criteria.Chains), func(c string) bool {
			return c == chain
		})
	} else {
		s.criteria.Chains = append(slices.Clone(s.criteria.Chains), chain)
	}
	s.recompute()
}

// cycleCategory steps through every category and back to all of them.
func (s *VaultListScreen) cycleCategory() {
	categories := s.snapshot.Categories()
	s.categoryIdx++
	if s.categoryIdx >= len(categories) {
		s.categoryIdx = -1
	}

	s.criteria.Category = ""
	if s.categoryIdx >= 0 {
		s.criteria.Category = categories[s.categoryIdx]
	}
	s.recompute()
}

func (s *VaultListScreen) activate(f vault.Field) {
	s.sort = s.sort.Activate(f)
	s.recompute()
}

func (s *VaultListScreen) setSnapshot(snap *vault.Snapshot) {
	s.snapshot = snap
	if s.criteria.Category != "" {
		s.categoryIdx = slices.Index(snap.Categories(), s.criteria.Category)
	}
	s.recompute()
}

// recompute rebuilds the visible list and keeps the selected vault selected
// when it survives the new criteria.
func (s *VaultListScreen) recompute() {
	var selectedID string
	if v, ok := s.Selected(); ok {
		selectedID = v.ID
	}

	s.visible = vault.View(s.snapshot.Vaults, s.criteria, s.sort)

	rows := make([][]string, len(s.visible))
	selected := 0
	for i, v := range s.visible {
		rows[i] = vaultRow(v)
		if v.ID == selectedID {
			selected = i
		}
	}

	s.table.SetColumns(s.columns()).SetRows(rows).SetSelectedRow(selected)
	for i, v := range s.visible {
		if v.IsEOL() {
			s.table.SetRowStyle(i, s.eolStyle)
		}
	}
}

func (s *VaultListScreen) columns() []component.TableColumn {
	const (
		chainWidth  = 10
		assetsWidth = 16
		apyWidth    = 13
		dailyWidth  = 10
		tvlWidth    = 12
	)
	// 6 columns: 2 padding each, 5 separators, 2 border
	fixed := chainWidth + assetsWidth + apyWidth + dailyWidth + tvlWidth + 6*2 + 5 + 2
	nameWidth := max(16, s.width-fixed)

	return []component.TableColumn{
		{Header: "VAULT", Width: nameWidth, Align: lipgloss.Left},
		{Header: "CHAIN", Width: chainWidth, Align: lipgloss.Left},
		{Header: "ASSETS", Width: assetsWidth, Align: lipgloss.Left},
		{Header: headerLabel(vault.FieldAPY, s.sort), Width: apyWidth, Align: lipgloss.Right},
		{Header: headerLabel(vault.FieldDaily, s.sort), Width: dailyWidth, Align: lipgloss.Right},
		{Header: headerLabel(vault.FieldTVL, s.sort), Width: tvlWidth, Align: lipgloss.Right},
	}
}

// headerLabel marks the active sort column with the arrow of its direction.
func headerLabel(f vault.Field, s vault.SortState) string {
	switch {
	case s.Is(f, vault.Ascending):
		return f.String() + " ▲"
	case s.Is(f, vault.Descending):
		return f.String() + " ▼"
	default:
		return f.String()
	}
}

func vaultRow(v vault.Vault) []string {
	return []string{
		v.Name,
		v.Chain,
		strings.Join(v.Assets, "-"),
		displayValue(vault.FieldAPY, v.APY),
		displayValue(vault.FieldDaily, v.Daily),
		displayValue(vault.FieldTVL, v.TVL),
	}
}

// displayValue formats a metric with its unit. N/A stays bare.
func displayValue(f vault.Field, v vault.Value) string {
	return vault.Display(f, v)
}

// Selected returns the highlighted vault.
func (s *VaultListScreen) Selected() (vault.Vault, bool) {
	if s.table == nil {
		return vault.Vault{}, false
	}
	idx := s.table.SelectedRow()
	if idx < 0 || idx >= len(s.visible) {
		return vault.Vault{}, false
	}
	return s.visible[idx], true
}

// Visible returns the vaults currently listed.
func (s *VaultListScreen) Visible() []vault.Vault {
	return s.visible
}

// Criteria returns the active filter.
func (s *VaultListScreen) Criteria() vault.Criteria {
	return s.criteria
}

// Sort returns the active sort state.
func (s *VaultListScreen) Sort() vault.SortState {
	return s.sort
}

func (s *VaultListScreen) fetchCmd() tea.Cmd {
	fetcher, timeout := s.deps.Fetcher, s.deps.timeout()
	return func() tea.Msg {
		if fetcher == nil {
			return ui.VaultsLoadedMsg{Err: errors.New("no vault source configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := fetcher.Refresh(ctx)
		return ui.VaultsLoadedMsg{Snapshot: snap, Err: err}
	}
}

func (s *VaultListScreen) exportCmd() tea.Cmd {
	if s.deps.Exporter == nil {
		return nil
	}
	exporter := s.deps.Exporter
	vaults := s.snapshot.Vaults
	options := export.ExportOptions{
		Format:    s.deps.ExportFormat,
		Criteria:  s.criteria,
		Sort:      s.sort,
		OutputDir: s.deps.ExportDir,
	}
	if options.Format == "" {
		options.Format = export.FormatCSV
	}
	logger := s.deps.Logger

	return func() tea.Msg {
		path, err := exporter.ExportVaults(vaults, options)
		if err != nil {
			logger.Error("Export failed", zap.Error(err))
		}
		return ui.ExportedMsg{Path: path, Err: err}
	}
}

// View renders the list screen
func (s *VaultListScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	title := fmt.Sprintf("Vaults (%d of %d)", len(s.visible), len(s.snapshot.Vaults))
	content.WriteString(s.styles.Title.Render(title))
	content.WriteString("\n")
	content.WriteString(s.renderFilters())
	content.WriteString("\n")

	switch s.mode {
	case modeSearch, modeMinTVL:
		content.WriteString(s.input.View())
		content.WriteString("\n")
	case modeChains:
		content.WriteString(s.renderChainPicker())
		content.WriteString("\n")
	}

	if line := s.renderStatus(); line != "" {
		content.WriteString(line)
		content.WriteString("\n")
	}

	switch {
	case len(s.visible) > 0:
		content.WriteString(s.table.View())
	case len(s.snapshot.Vaults) == 0:
		content.WriteString(s.styles.Muted.Render("No vaults loaded yet."))
	default:
		content.WriteString(s.styles.Muted.Render("No vaults match the current filters."))
	}
	content.WriteString("\n")

	if s.logs.Visible() {
		content.WriteString(s.logs.View())
		content.WriteString("\n")
	} else if line := s.renderLogLine(); line != "" {
		content.WriteString(line)
		content.WriteString("\n")
	}

	content.WriteString(s.helpBar.View())
	return content.String()
}

func (s *VaultListScreen) renderFilters() string {
	search := "any"
	if s.criteria.Search != "" {
		search = fmt.Sprintf("%q", s.criteria.Search)
	}
	chains := "all"
	if len(s.criteria.Chains) > 0 {
		chains = strings.Join(s.criteria.Chains, ",")
	}
	category := "all"
	if s.criteria.Category != "" {
		category = s.criteria.Category
	}
	eol := "hidden"
	if s.criteria.ShowEOL {
		eol = "shown"
	}

	parts := []string{
		s.styles.Label.Render("search ") + s.styles.Value.Render(search),
		s.styles.Label.Render("chains ") + s.styles.Value.Render(chains),
		s.styles.Label.Render("category ") + s.styles.Value.Render(category),
		s.styles.Label.Render("min tvl ") + s.styles.Value.Render(displayValue(vault.FieldTVL, vault.Number(s.criteria.MinimumTVL))),
		s.styles.Label.Render("eol ") + s.styles.Value.Render(eol),
		s.styles.Label.Render("sort ") + s.styles.Value.Render(s.sort.String()),
	}
	return " " + strings.Join(parts, s.styles.Muted.Render(" • "))
}

func (s *VaultListScreen) renderChainPicker() string {
	var lines []string
	for i, chain := range s.snapshot.Chains() {
		cursor := "  "
		if i == s.chainCursor {
			cursor = "› "
		}
		mark := "[ ]"
		if slices.Contains(s.criteria.Chains, chain) {
			mark = "[x]"
		}
		lines = append(lines, cursor+mark+" "+chain)
	}
	return s.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (s *VaultListScreen) renderStatus() string {
	switch {
	case s.loading:
		return " " + s.spinner.View() + " Fetching vaults..."
	case s.err != nil:
		return s.styles.Error.Render(" " + s.err.Error())
	case s.status != "":
		return s.styles.Success.Render(" " + s.status)
	case !s.snapshot.FetchedAt.IsZero():
		return s.styles.Muted.Render(" Updated " + s.snapshot.FetchedAt.Format("15:04:05"))
	default:
		return ""
	}
}

// renderLogLine shows the newest warning or error from the log buffer.
func (s *VaultListScreen) renderLogLine() string {
	if s.deps.Logs == nil {
		return ""
	}
	entry, ok := s.deps.Logs.Last("warn", "error")
	if !ok {
		return ""
	}
	line := fmt.Sprintf(" %s %s %s", entry.Timestamp.Format("15:04:05"), strings.ToUpper(entry.Level), entry.Message)
	return s.styles.Warning.Render(line)
}

// SetSize sets the screen dimensions
func (s *VaultListScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.input.Width = max(10, width-6)
	s.logs.SetSize(width, max(5, height/3))
	s.resize()
}

func (s *VaultListScreen) resize() {
	// title, filters, status, log line, help (2)
	s.table.SetColumns(s.columns()).SetSize(s.width, s.height-6-s.logs.Height())
}
