// Package browse implements the browse mode controller: the catalog
// listing, regex search, and per-artifact enrichment flows.
package browse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/dmallory/curio/internal/config"
	"github.com/dmallory/curio/internal/keys"
	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/help"
	"github.com/dmallory/curio/internal/ui/modal"
	"github.com/dmallory/curio/internal/ui/styles"
	"github.com/dmallory/curio/internal/ui/toaster"
)

// FocusPane represents which pane has focus in browse mode.
type FocusPane int

const (
	FocusSearch FocusPane = iota
	FocusResults
)

// ViewMode represents overlay states within browse mode.
type ViewMode int

const (
	ViewBrowse ViewMode = iota
	ViewHelp
	ViewSubmit
)

// catalogState is the terminal state of the last catalog request.
type catalogState int

const (
	stateLoading catalogState = iota
	stateReady
	stateEmpty     // List flow returned zero artifacts
	stateNoMatches // Search flow found nothing (404 or empty array)
	stateError
)

// Model holds the browse mode state.
type Model struct {
	services mode.Services
	keys     keys.BrowseKeyMap

	// Search state
	input     textinput.Model
	searching bool // Input and trigger locked while a search is in flight
	searchSeq int  // Monotonic token; stale catalog responses are discarded
	lastQuery string

	// History cycling
	histIdx   int    // -1 when not cycling
	histStash string // Input value before cycling started

	// Catalog state
	state       catalogState
	errMsg      string
	results     []registry.ArtifactSummary
	resultsList list.Model

	// Overlays
	view        ViewMode
	help        help.Model
	submitModal modal.Model

	// Focus management
	focus FocusPane

	// Layout
	width  int
	height int
}

// New creates a new browse mode controller.
func New(services mode.Services) Model {
	input := textinput.New()
	input.Placeholder = "Regex search, e.g. bert.*uncased (empty = list all)"
	input.Prompt = "/ "

	delegate := newArtifactDelegate(services.Cache)
	resultsList := list.New([]list.Item{}, delegate, 0, 0)
	resultsList.SetShowTitle(false)
	resultsList.SetShowStatusBar(false)
	resultsList.SetShowHelp(false)
	resultsList.SetFilteringEnabled(false)

	return Model{
		services:    services,
		keys:        keys.DefaultBrowseKeyMap(),
		input:       input,
		resultsList: resultsList,
		state:       stateLoading,
		// The initial listing issued by Init runs under seq 1
		searchSeq: 1,
		searching: true,
		focus:     FocusResults,
		view:      ViewBrowse,
		help:      help.New(),
		histIdx:   -1,
	}
}

// Init kicks off the initial catalog listing.
func (m Model) Init() tea.Cmd {
	return listCmd(m.services.Client, m.searchSeq)
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) mode.Controller {
	m.width = width
	m.height = height

	if width == 0 || height == 0 {
		return m
	}

	m.input.Width = max(width-8, 1)

	// Input box (3) + gap between panels
	listHeight := max(height-4, 1)
	m.resultsList.SetSize(max(width-2, 1), listHeight)

	m.help = m.help.SetSize(width, height)
	m.submitModal.SetSize(width, height)

	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case catalogResultMsg:
		return m.handleCatalogResult(msg)

	case detailResolvedMsg:
		// The delegate reads the cache at render time; a resolved
		// detail only needs a repaint.
		return m, nil

	case artifactSubmittedMsg:
		return m.handleSubmitted(msg)

	case historySavedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatConfig, "Failed to persist search history", msg.err)
		}
		return m, nil

	case modal.SubmitMsg:
		if m.view == ViewSubmit {
			return m.handleSubmitModal(msg)
		}
		return m, nil

	case modal.CancelMsg:
		if m.view == ViewSubmit {
			m.view = ViewBrowse
		}
		return m, nil
	}

	return m, nil
}

// View renders the browse mode.
func (m Model) View() string {
	switch m.view {
	case ViewHelp:
		return m.help.Overlay(m.renderMainView())
	case ViewSubmit:
		return m.submitModal.Overlay(m.renderMainView())
	}
	return m.renderMainView()
}

// Refresh re-runs the last catalog request. Called by the app after
// mutations (delete, update, submit from elsewhere) invalidate the view.
func (m Model) Refresh() (mode.Controller, tea.Cmd) {
	m.state = stateLoading
	if strings.TrimSpace(m.lastQuery) != "" {
		return m.startSearch(m.lastQuery)
	}
	return m.startList()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	// Overlays swallow input first
	switch m.view {
	case ViewHelp:
		if msg.String() == "esc" || msg.String() == "?" {
			m.view = ViewBrowse
		}
		return m, nil

	case ViewSubmit:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.submitModal, cmd = m.submitModal.Update(msg)
		return m, cmd
	}

	if m.focus == FocusSearch {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		m.view = ViewHelp
		return m, nil

	case "/":
		m.focus = FocusSearch
		m.input.Focus()
		return m, textinput.Blink

	case "j", "down":
		m.resultsList.CursorDown()
		return m, nil

	case "k", "up":
		if m.resultsList.Index() == 0 {
			m.focus = FocusSearch
			m.input.Focus()
			return m, textinput.Blink
		}
		m.resultsList.CursorUp()
		return m, nil

	case "enter":
		if summary, ok := m.selectedSummary(); ok {
			return m, openInspectCmd(summary)
		}
		return m, nil

	case "e":
		return m.enrichSelected()

	case "r":
		m.state = stateLoading
		return m.startList()

	case "s":
		return m.openSubmitModal()

	case "y":
		return m.yankArtifactID()
	}

	return m, nil
}

// handleSearchKey processes keys while the search input is focused.
func (m Model) handleSearchKey(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.input.Blur()
		m.focus = FocusResults
		m.histIdx = -1
		return m, nil

	case "tab", "down":
		m.input.Blur()
		m.focus = FocusResults
		m.histIdx = -1
		return m, nil

	case "enter":
		if m.searching {
			// Trigger locked while a search is in flight
			return m, nil
		}
		query := m.input.Value()
		m.input.Blur()
		m.focus = FocusResults
		m.histIdx = -1
		m.state = stateLoading
		if strings.TrimSpace(query) == "" {
			// Blank query is not a search; fall back to the list flow
			return m.startList()
		}
		return m.startSearch(query)

	case "ctrl+p":
		return m.cycleHistory(1)

	case "ctrl+n":
		return m.cycleHistory(-1)

	default:
		if m.searching {
			// Input locked while a search is in flight
			return m, nil
		}
		var cmd tea.Cmd
		old := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != old {
			m.histIdx = -1
		}
		return m, cmd
	}
}

// handleMouse maps clicks on result rows to selection plus enrichment.
func (m Model) handleMouse(msg tea.MouseMsg) (mode.Controller, tea.Cmd) {
	if m.view != ViewBrowse {
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	for i, summary := range m.results {
		if z := zone.Get(rowZoneID(summary.ID)); z != nil && z.InBounds(msg) {
			m.resultsList.Select(i)
			m.focus = FocusResults
			return m.enrichSelected()
		}
	}
	return m, nil
}

// cycleHistory walks the persisted search history. dir is +1 for older
// entries, -1 for newer; leaving the newest entry restores the stashed
// input value.
func (m Model) cycleHistory(dir int) (mode.Controller, tea.Cmd) {
	searches := m.services.Config.History.Searches
	if len(searches) == 0 {
		return m, nil
	}

	if m.histIdx == -1 {
		if dir < 0 {
			return m, nil
		}
		m.histStash = m.input.Value()
		m.histIdx = 0
	} else {
		next := m.histIdx + dir
		switch {
		case next < 0:
			m.histIdx = -1
			m.input.SetValue(m.histStash)
			m.input.CursorEnd()
			return m, nil
		case next >= len(searches):
			return m, nil
		default:
			m.histIdx = next
		}
	}

	m.input.SetValue(searches[m.histIdx])
	m.input.CursorEnd()
	return m, nil
}

// enrichSelected resolves rating and cost for the selected artifact
// through the coalescing cache.
func (m Model) enrichSelected() (mode.Controller, tea.Cmd) {
	summary, ok := m.selectedSummary()
	if !ok {
		return m, nil
	}
	if _, resolved := m.services.Cache.Get(summary.ID); resolved {
		return m, nil
	}
	return m, enrichCmd(m.services.Cache, m.services.Enricher, summary)
}

// openSubmitModal shows the artifact submission form.
func (m Model) openSubmitModal() (mode.Controller, tea.Cmd) {
	m.submitModal = modal.New(modal.Config{
		Title: "Submit Artifact",
		Inputs: []modal.InputConfig{
			{Key: "type", Label: "Type (model, dataset, code)", Placeholder: "model"},
			{Key: "url", Label: "Source URL", Placeholder: "https://huggingface.co/..."},
		},
		MinWidth: 56,
	})
	m.submitModal.SetSize(m.width, m.height)
	m.view = ViewSubmit
	return m, m.submitModal.Init()
}

// handleSubmitModal validates and dispatches the submission.
func (m Model) handleSubmitModal(msg modal.SubmitMsg) (mode.Controller, tea.Cmd) {
	artifactType, err := registry.ParseArtifactType(msg.Values["type"])
	if err != nil {
		// Keep the modal open so the user can fix the type
		return m, showToast(err.Error(), toaster.StyleError)
	}

	m.view = ViewBrowse
	req := registry.SubmissionRequest{Type: artifactType, URL: msg.Values["url"]}
	return m, tea.Batch(
		showToast("Submitting "+req.URL, toaster.StyleInfo),
		submitCmd(m.services.Submitter, req),
	)
}

// handleSubmitted reports the submission outcome and refreshes the catalog.
func (m Model) handleSubmitted(msg artifactSubmittedMsg) (mode.Controller, tea.Cmd) {
	if msg.err != nil {
		return m, showToast("Submission failed: "+msg.err.Error(), toaster.StyleError)
	}

	name := msg.artifact.Metadata.Name
	if name == "" {
		name = msg.artifact.Metadata.ID
	}
	m.state = stateLoading
	next, refresh := m.startList()
	return next, tea.Batch(
		showToast("Registered "+name, toaster.StyleSuccess),
		refresh,
	)
}

// yankArtifactID copies the selected artifact ID to the clipboard.
func (m Model) yankArtifactID() (mode.Controller, tea.Cmd) {
	summary, ok := m.selectedSummary()
	if !ok {
		return m, showToast("No artifact selected", toaster.StyleError)
	}
	if err := m.services.Clipboard.Copy(summary.ID); err != nil {
		return m, showToast("Clipboard error: "+err.Error(), toaster.StyleError)
	}
	return m, showToast("Copied: "+summary.ID, toaster.StyleSuccess)
}

// selectedSummary returns the summary under the cursor.
func (m Model) selectedSummary() (registry.ArtifactSummary, bool) {
	idx := m.resultsList.Index()
	if idx < 0 || idx >= len(m.results) {
		return registry.ArtifactSummary{}, false
	}
	return m.results[idx], true
}

// startList issues the list-all catalog request under a fresh sequence
// token.
func (m Model) startList() (Model, tea.Cmd) {
	m.searchSeq++
	m.searching = true
	m.lastQuery = ""
	return m, listCmd(m.services.Client, m.searchSeq)
}

// startSearch issues a regex search under a fresh sequence token.
// Callers have already rejected blank queries.
func (m Model) startSearch(query string) (Model, tea.Cmd) {
	m.searchSeq++
	m.searching = true
	m.lastQuery = query
	return m, searchCmd(m.services.Client, m.searchSeq, query)
}

// handleCatalogResult folds a catalog response into the state machine.
// Responses from superseded requests are discarded; the latest issued
// request wins.
func (m Model) handleCatalogResult(msg catalogResultMsg) (mode.Controller, tea.Cmd) {
	if msg.seq != m.searchSeq {
		log.Debug(log.CatMode, "Discarding stale catalog response", "seq", msg.seq, "latest", m.searchSeq)
		return m, nil
	}

	// Restore the input and trigger on every exit path
	m.searching = false

	if msg.err != nil {
		if msg.fromSearch && registry.IsNotFound(msg.err) {
			// 404 on search is the no-matches terminal, not an error
			m.state = stateNoMatches
			m.results = nil
			m.resultsList.SetItems([]list.Item{})
			return m, m.saveHistory(msg.query)
		}
		m.state = stateError
		m.errMsg = msg.err.Error()
		m.results = nil
		m.resultsList.SetItems([]list.Item{})
		return m, nil
	}

	m.results = msg.summaries
	items := make([]list.Item, len(msg.summaries))
	for i, summary := range msg.summaries {
		items[i] = artifactItem{summary: summary}
	}
	m.resultsList.SetItems(items)
	if len(items) > 0 {
		m.resultsList.Select(0)
	}

	switch {
	case len(msg.summaries) > 0:
		m.state = stateReady
	case msg.fromSearch:
		m.state = stateNoMatches
	default:
		m.state = stateEmpty
	}

	if msg.fromSearch {
		return m, m.saveHistory(msg.query)
	}
	return m, nil
}

// saveHistory records an executed search in config, in memory and on disk.
func (m Model) saveHistory(query string) tea.Cmd {
	cfg := m.services.Config
	cfg.History.Searches = config.AppendSearch(cfg.History.Searches, query, cfg.History.MaxEntries)

	searches := cfg.History.Searches
	configPath := m.services.ConfigPath
	if configPath == "" {
		return nil
	}
	return func() tea.Msg {
		return historySavedMsg{err: config.SaveSearchHistory(configPath, searches)}
	}
}

// renderMainView renders the search input above the results panel.
func (m Model) renderMainView() string {
	var sb strings.Builder

	inputTitle := "Search"
	if m.searching {
		inputTitle = "Search (running...)"
	}
	inputBorder := styles.RenderWithTitleBorder(
		m.input.View(),
		inputTitle,
		m.width,
		3,
		m.focus == FocusSearch,
		styles.OverlayTitleColor,
		styles.BorderHighlightFocusColor,
	)
	sb.WriteString(inputBorder)
	sb.WriteString("\n")

	resultsTitle := "Artifacts"
	if m.state == stateReady {
		resultsTitle = fmt.Sprintf("Artifacts (%d)", len(m.results))
	}
	resultsBorder := styles.RenderWithTitleBorder(
		m.renderResults(),
		resultsTitle,
		m.width,
		max(m.height-3, 3),
		m.focus == FocusResults,
		styles.OverlayTitleColor,
		styles.BorderHighlightFocusColor,
	)
	sb.WriteString(resultsBorder)

	return sb.String()
}

// renderResults renders the catalog panel for the current state. Empty
// and no-matches are distinct terminals from errors.
func (m Model) renderResults() string {
	switch m.state {
	case stateLoading:
		return lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Padding(1, 2).
			Render("Loading artifacts...")

	case stateError:
		return styles.ErrorStyle.Render("Error: " + m.errMsg)

	case stateEmpty:
		return lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Padding(1, 2).
			Render("Registry is empty. Press s to submit an artifact.")

	case stateNoMatches:
		return lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Padding(1, 2).
			Render("No artifacts match " + strconv.Quote(m.lastQuery))

	default:
		return m.resultsList.View()
	}
}
