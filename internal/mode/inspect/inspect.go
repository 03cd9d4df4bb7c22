// Package inspect implements the inspect mode controller: the full
// record view for one artifact, with copy, update, and delete actions.
package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dmallory/curio/internal/keys"
	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/help"
	"github.com/dmallory/curio/internal/ui/markdown"
	"github.com/dmallory/curio/internal/ui/modal"
	"github.com/dmallory/curio/internal/ui/styles"
	"github.com/dmallory/curio/internal/ui/toaster"
)

// ViewMode represents overlay states within inspect mode.
type ViewMode int

const (
	ViewInspect ViewMode = iota
	ViewHelp
	ViewUpdate
	ViewDeleteConfirm
)

// recordState is the terminal state of the record fetch.
type recordState int

const (
	stateLoading recordState = iota
	stateReady
	stateNotFound
	stateError
)

// Model holds the inspect mode state.
type Model struct {
	services     mode.Services
	keys         keys.InspectKeyMap
	id           string
	artifactType registry.ArtifactType

	state    recordState
	errMsg   string
	artifact registry.Artifact
	viewport viewport.Model

	view        ViewMode
	help        help.Model
	actionModal modal.Model

	width  int
	height int
}

// New creates an inspect mode controller for one artifact.
func New(services mode.Services, id string, artifactType registry.ArtifactType) Model {
	return Model{
		services:     services,
		keys:         keys.DefaultInspectKeyMap(),
		id:           id,
		artifactType: artifactType,
		state:        stateLoading,
		view:         ViewInspect,
		help:         help.NewInspect(),
	}
}

// Init loads the artifact record and starts its enrichment.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadArtifactCmd(m.services.Client, m.artifactType, m.id),
		enrichCmd(m.services.Cache, m.services.Enricher, m.id, m.artifactType),
	)
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) mode.Controller {
	m.width = width
	m.height = height

	if width == 0 || height == 0 {
		return m
	}

	m.viewport = viewport.New(max(width-4, 1), max(height-2, 1))
	m.refreshContent()
	m.help = m.help.SetSize(width, height)
	m.actionModal.SetSize(width, height)
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case artifactLoadedMsg:
		return m.handleLoaded(msg)

	case detailResolvedMsg:
		m.refreshContent()
		return m, nil

	case artifactUpdatedMsg:
		return m.handleUpdated(msg)

	case artifactDeletedMsg:
		return m.handleDeleted(msg)

	case modal.SubmitMsg:
		return m.handleModalSubmit(msg)

	case modal.CancelMsg:
		if m.view == ViewUpdate || m.view == ViewDeleteConfirm {
			m.view = ViewInspect
		}
		return m, nil
	}

	return m, nil
}

// View renders the inspect mode.
func (m Model) View() string {
	switch m.view {
	case ViewHelp:
		return m.help.Overlay(m.renderMainView())
	case ViewUpdate, ViewDeleteConfirm:
		return m.actionModal.Overlay(m.renderMainView())
	}
	return m.renderMainView()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	switch m.view {
	case ViewHelp:
		if msg.String() == "esc" || msg.String() == "?" {
			m.view = ViewInspect
		}
		return m, nil

	case ViewUpdate, ViewDeleteConfirm:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.actionModal, cmd = m.actionModal.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		return m, backCmd()

	case "?":
		m.view = ViewHelp
		return m, nil

	case "j", "down":
		m.viewport.ScrollDown(1)
		return m, nil

	case "k", "up":
		m.viewport.ScrollUp(1)
		return m, nil

	case "c":
		return m.copyDownloadURL()

	case "u":
		return m.openUpdateModal()

	case "d", "x":
		return m.openDeleteConfirm()

	case "r":
		m.state = stateLoading
		return m, loadArtifactCmd(m.services.Client, m.artifactType, m.id)
	}

	return m, nil
}

// copyDownloadURL copies the artifact's download URL, falling back to
// the source URL when the registry recorded none.
func (m Model) copyDownloadURL() (mode.Controller, tea.Cmd) {
	if m.state != stateReady {
		return m, showToast("No artifact loaded", toaster.StyleError)
	}

	target := m.artifact.Data.DownloadURL
	if target == "" {
		target = m.artifact.Data.URL
	}
	if target == "" {
		return m, showToast("Artifact has no URL", toaster.StyleError)
	}

	if err := m.services.Clipboard.Copy(target); err != nil {
		return m, showToast("Clipboard error: "+err.Error(), toaster.StyleError)
	}
	return m, showToast("Copied download URL", toaster.StyleSuccess)
}

// openUpdateModal shows the URL replacement form.
func (m Model) openUpdateModal() (mode.Controller, tea.Cmd) {
	if m.state != stateReady {
		return m, showToast("No artifact loaded", toaster.StyleError)
	}

	m.actionModal = modal.New(modal.Config{
		Title:   "Update Artifact",
		Message: "Replacing the source URL re-ingests and re-rates the artifact.",
		Inputs: []modal.InputConfig{
			{Key: "url", Label: "Source URL", Value: m.artifact.Data.URL},
		},
		MinWidth: 56,
	})
	m.actionModal.SetSize(m.width, m.height)
	m.view = ViewUpdate
	return m, m.actionModal.Init()
}

// openDeleteConfirm shows the delete confirmation.
func (m Model) openDeleteConfirm() (mode.Controller, tea.Cmd) {
	if m.state != stateReady && m.state != stateNotFound {
		return m, nil
	}

	m.actionModal = modal.New(modal.Config{
		Title:          "Delete Artifact",
		Message:        fmt.Sprintf("Permanently delete %q from the registry? This cannot be undone.", m.displayName()),
		ConfirmVariant: modal.ButtonDanger,
	})
	m.actionModal.SetSize(m.width, m.height)
	m.view = ViewDeleteConfirm
	return m, m.actionModal.Init()
}

// handleModalSubmit routes modal confirmations to the pending action.
func (m Model) handleModalSubmit(msg modal.SubmitMsg) (mode.Controller, tea.Cmd) {
	switch m.view {
	case ViewUpdate:
		m.view = ViewInspect
		updated := m.artifact
		updated.Data.URL = msg.Values["url"]
		return m, updateArtifactCmd(m.services.Client, updated)

	case ViewDeleteConfirm:
		m.view = ViewInspect
		return m, deleteArtifactCmd(m.services.Client, m.artifactType, m.id)
	}
	return m, nil
}

// handleLoaded folds the record fetch outcome into the state machine.
// A 404 is rendered as absence, not as an error.
func (m Model) handleLoaded(msg artifactLoadedMsg) (mode.Controller, tea.Cmd) {
	if msg.err != nil {
		if registry.IsNotFound(msg.err) {
			m.state = stateNotFound
		} else {
			m.state = stateError
			m.errMsg = msg.err.Error()
		}
		m.refreshContent()
		return m, nil
	}

	m.state = stateReady
	m.artifact = msg.artifact
	m.refreshContent()
	return m, nil
}

// handleUpdated reports the update outcome. A successful update
// invalidates every cached detail record since the registry re-rates.
func (m Model) handleUpdated(msg artifactUpdatedMsg) (mode.Controller, tea.Cmd) {
	if msg.err != nil {
		return m, showToast("Update failed: "+msg.err.Error(), toaster.StyleError)
	}

	m.services.Cache.Flush()
	m.state = stateLoading
	return m, tea.Batch(
		showToast("Artifact updated; re-rating in progress", toaster.StyleSuccess),
		loadArtifactCmd(m.services.Client, m.artifactType, m.id),
		enrichCmd(m.services.Cache, m.services.Enricher, m.id, m.artifactType),
		refreshCatalogCmd(),
	)
}

// handleDeleted reports the delete outcome and returns to browse.
func (m Model) handleDeleted(msg artifactDeletedMsg) (mode.Controller, tea.Cmd) {
	if msg.err != nil {
		return m, showToast("Delete failed: "+msg.err.Error(), toaster.StyleError)
	}

	m.services.Cache.Flush()
	return m, tea.Batch(
		showToast("Deleted "+m.displayName(), toaster.StyleSuccess),
		backCmd(),
		refreshCatalogCmd(),
	)
}

// displayName prefers the artifact name, falling back to the id.
func (m Model) displayName() string {
	if m.state == stateReady && m.artifact.Metadata.Name != "" {
		return m.artifact.Metadata.Name
	}
	return m.id
}

// refreshContent rebuilds the viewport body for the current state.
func (m *Model) refreshContent() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := max(m.width-4, 1)

	var body string
	switch m.state {
	case stateLoading:
		body = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Padding(1, 2).
			Render("Loading artifact...")

	case stateNotFound:
		body = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Padding(1, 2).
			Render(wordwrap.String(fmt.Sprintf("Artifact %q is not in the registry. It may have been deleted.", m.id), contentWidth-4))

	case stateError:
		body = styles.ErrorStyle.Render(wordwrap.String("Error: "+m.errMsg, contentWidth-4))

	default:
		body = m.renderRecord(contentWidth)
	}

	m.viewport.SetContent(body)
}

// renderRecord renders the full record as styled markdown.
func (m Model) renderRecord(width int) string {
	details, enriched := m.services.Cache.Get(m.id)
	rating, cost := "pending...", "pending..."
	if enriched {
		rating, cost = details.Rating, details.Cost
	}

	downloadURL := m.artifact.Data.DownloadURL
	if downloadURL == "" {
		downloadURL = m.artifact.Data.URL
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", m.displayName())
	fmt.Fprintf(&md, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&md, "| ID | `%s` |\n", m.artifact.Metadata.ID)
	fmt.Fprintf(&md, "| Type | %s |\n", m.artifact.Metadata.Type)
	fmt.Fprintf(&md, "| Rating | %s |\n", rating)
	fmt.Fprintf(&md, "| Cost | %s |\n", cost)
	fmt.Fprintf(&md, "\n## Source\n\n%s\n", m.artifact.Data.URL)
	fmt.Fprintf(&md, "\n## Download\n\n%s\n\nPress c to copy the download URL.\n", downloadURL)

	renderer, err := markdown.New(width, m.services.Config.UI.MarkdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "Markdown renderer init failed", err)
		return md.String()
	}
	rendered, err := renderer.Render(md.String())
	if err != nil {
		log.ErrorErr(log.CatUI, "Markdown render failed", err)
		return md.String()
	}
	return rendered
}

// renderMainView renders the record inside a titled border.
func (m Model) renderMainView() string {
	title := fmt.Sprintf("Artifact: %s", m.displayName())
	return styles.RenderWithTitleBorder(
		m.viewport.View(),
		title,
		m.width,
		m.height,
		true,
		styles.OverlayTitleColor,
		styles.BorderHighlightFocusColor,
	)
}

// Message types

// artifactLoadedMsg carries the record fetch outcome.
type artifactLoadedMsg struct {
	artifact registry.Artifact
	err      error
}

// detailResolvedMsg signals that enrichment resolved.
type detailResolvedMsg struct {
	id string
}

// artifactUpdatedMsg carries the update outcome.
type artifactUpdatedMsg struct {
	err error
}

// artifactDeletedMsg carries the delete outcome.
type artifactDeletedMsg struct {
	err error
}

// BackMsg asks the app to return to browse mode.
type BackMsg struct{}

// RefreshCatalogMsg asks the app to re-run the browse catalog request.
type RefreshCatalogMsg struct{}

// Async commands

func loadArtifactCmd(client *registry.Client, artifactType registry.ArtifactType, id string) tea.Cmd {
	return func() tea.Msg {
		artifact, err := client.Get(context.Background(), artifactType, id)
		return artifactLoadedMsg{artifact: artifact, err: err}
	}
}

func enrichCmd(cache *registry.DetailCache, enricher *registry.Enricher, id string, artifactType registry.ArtifactType) tea.Cmd {
	return func() tea.Msg {
		_, _ = cache.GetOrFetch(context.Background(), id, artifactType, enricher.Details)
		return detailResolvedMsg{id: id}
	}
}

func updateArtifactCmd(client *registry.Client, artifact registry.Artifact) tea.Cmd {
	return func() tea.Msg {
		return artifactUpdatedMsg{err: client.Update(context.Background(), artifact)}
	}
}

func deleteArtifactCmd(client *registry.Client, artifactType registry.ArtifactType, id string) tea.Cmd {
	return func() tea.Msg {
		return artifactDeletedMsg{err: client.Delete(context.Background(), artifactType, id)}
	}
}

func backCmd() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

func refreshCatalogCmd() tea.Cmd {
	return func() tea.Msg { return RefreshCatalogMsg{} }
}

func showToast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg {
		return mode.ShowToastMsg{Message: message, Style: style}
	}
}
