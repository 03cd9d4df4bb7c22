package browse

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmallory/curio/internal/config"
	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/mode/shared"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/modal"
	"github.com/dmallory/curio/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	defer zone.Close()
	m.Run()
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	client, err := registry.NewClient(registry.ClientConfig{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	cfg := config.Defaults()
	services := mode.Services{
		Client:    client,
		Cache:     registry.NewDetailCache(),
		Enricher:  registry.NewEnricher(client, 0),
		Submitter: registry.NewSubmitter(client),
		Config:    &cfg,
		Clipboard: &shared.MockClipboard{},
	}

	m := New(services)
	return m.SetSize(100, 30).(Model)
}

func summaries(names ...string) []registry.ArtifactSummary {
	out := make([]registry.ArtifactSummary, len(names))
	for i, name := range names {
		out[i] = registry.ArtifactSummary{
			ID:   fmt.Sprintf("id-%d", i),
			Name: name,
			Type: registry.TypeModel,
		}
	}
	return out
}

func deliver(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCatalogResult_PopulatesList(t *testing.T) {
	m := newTestModel(t)
	assert.True(t, m.searching)

	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert", "gpt2")})

	assert.False(t, m.searching)
	assert.Equal(t, stateReady, m.state)
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.View(), "Artifacts (2)")
	assert.Contains(t, m.View(), "bert")
}

func TestCatalogResult_StaleSequenceDiscarded(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("current")})

	// A response from a superseded request changes nothing
	m, cmd := deliver(t, m, catalogResultMsg{seq: m.searchSeq - 1, summaries: summaries("stale-a", "stale-b")})
	assert.Nil(t, cmd)
	assert.Equal(t, stateReady, m.state)
	require.Len(t, m.results, 1)
	assert.Equal(t, "current", m.results[0].Name)
}

func TestCatalogResult_EmptyListVsNoMatches(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		m := newTestModel(t)
		m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq})
		assert.Equal(t, stateEmpty, m.state)
		assert.Contains(t, m.View(), "Registry is empty")
	})

	t.Run("search with no hits", func(t *testing.T) {
		m := newTestModel(t)
		m.lastQuery = "nothing.*matches"
		m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, fromSearch: true, query: "nothing.*matches"})
		assert.Equal(t, stateNoMatches, m.state)
		assert.Contains(t, m.View(), "No artifacts match")
	})
}

func TestCatalogResult_SearchNotFoundIsNoMatches(t *testing.T) {
	m := newTestModel(t)
	m.lastQuery = "ghost"

	notFound := &registry.Error{StatusCode: 404, Message: "no artifacts matched"}
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, err: notFound, fromSearch: true, query: "ghost"})

	assert.Equal(t, stateNoMatches, m.state)
	assert.False(t, m.searching)
	assert.Empty(t, m.results)
}

func TestCatalogResult_ErrorState(t *testing.T) {
	m := newTestModel(t)

	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, err: fmt.Errorf("connection refused")})

	assert.Equal(t, stateError, m.state)
	assert.False(t, m.searching)
	assert.Contains(t, m.View(), "connection refused")
}

func TestSearch_EnterIssuesFreshSequence(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("/"))
	assert.Equal(t, FocusSearch, m.focus)

	for _, r := range "bert.*" {
		m, _ = deliver(t, m, keyRunes(string(r)))
	}

	before := m.searchSeq
	m, cmd := deliver(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, before+1, m.searchSeq)
	assert.True(t, m.searching)
	assert.Equal(t, "bert.*", m.lastQuery)
	assert.Equal(t, FocusResults, m.focus)
	assert.NotNil(t, cmd)
}

func TestSearch_BlankQueryFallsBackToList(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("/"))
	m, _ = deliver(t, m, keyRunes(" "))
	m, cmd := deliver(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.searching)
	// List flow, not search: no query is recorded
	assert.Empty(t, m.lastQuery)
	assert.NotNil(t, cmd)
}

func TestSearch_LockedWhileInFlight(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("/"))
	for _, r := range "bert" {
		m, _ = deliver(t, m, keyRunes(string(r)))
	}
	m, _ = deliver(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.searching)

	// Typing is swallowed while the search runs
	m, _ = deliver(t, m, keyRunes("/"))
	m, _ = deliver(t, m, keyRunes("x"))
	assert.Equal(t, "bert", m.input.Value())

	// So is the trigger: no new sequence is issued
	before := m.searchSeq
	m, cmd := deliver(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, before, m.searchSeq)
	assert.Nil(t, cmd)

	// Completion restores both
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert"), fromSearch: true, query: "bert"})
	assert.False(t, m.searching)
	m, _ = deliver(t, m, keyRunes("x"))
	assert.Equal(t, "bertx", m.input.Value())
}

func TestHistoryCycling(t *testing.T) {
	m := newTestModel(t)
	m.services.Config.History.Searches = []string{"newest", "middle", "oldest"}
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("/"))
	for _, r := range "draft" {
		m, _ = deliver(t, m, keyRunes(string(r)))
	}

	ctrlP := tea.KeyMsg{Type: tea.KeyCtrlP}
	ctrlN := tea.KeyMsg{Type: tea.KeyCtrlN}

	m, _ = deliver(t, m, ctrlP)
	assert.Equal(t, "newest", m.input.Value())
	m, _ = deliver(t, m, ctrlP)
	assert.Equal(t, "middle", m.input.Value())
	m, _ = deliver(t, m, ctrlP)
	assert.Equal(t, "oldest", m.input.Value())

	// Past the oldest entry stays put
	m, _ = deliver(t, m, ctrlP)
	assert.Equal(t, "oldest", m.input.Value())

	// Cycling back down restores the stashed draft
	m, _ = deliver(t, m, ctrlN)
	m, _ = deliver(t, m, ctrlN)
	assert.Equal(t, "newest", m.input.Value())
	m, _ = deliver(t, m, ctrlN)
	assert.Equal(t, "draft", m.input.Value())
}

func TestHistoryCycling_EditingResetsPosition(t *testing.T) {
	m := newTestModel(t)
	m.services.Config.History.Searches = []string{"saved"}
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("/"))
	m, _ = deliver(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.Equal(t, "saved", m.input.Value())

	m, _ = deliver(t, m, keyRunes("x"))
	assert.Equal(t, -1, m.histIdx)
}

func TestEnterOpensInspect(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert", "gpt2")})

	m, _ = deliver(t, m, keyRunes("j"))
	_, cmd := deliver(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(OpenInspectMsg)
	require.True(t, ok)
	assert.Equal(t, "id-1", msg.ID)
	assert.Equal(t, registry.TypeModel, msg.Type)
}

func TestYank_CopiesSelectedID(t *testing.T) {
	m := newTestModel(t)
	clip := m.services.Clipboard.(*shared.MockClipboard)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	_, cmd := deliver(t, m, keyRunes("y"))
	require.NotNil(t, cmd)

	toast, ok := cmd().(mode.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, toaster.StyleSuccess, toast.Style)
	assert.Equal(t, []string{"id-0"}, clip.Copied)
}

func TestSubmitModal_InvalidTypeKeepsModalOpen(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("s"))
	require.Equal(t, ViewSubmit, m.view)

	m, cmd := deliver(t, m, modal.SubmitMsg{Values: map[string]string{"type": "plugin", "url": "https://example.com"}})

	assert.Equal(t, ViewSubmit, m.view)
	require.NotNil(t, cmd)
	toast, ok := cmd().(mode.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, toaster.StyleError, toast.Style)
}

func TestSubmitModal_ValidSubmissionCloses(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("s"))
	m, cmd := deliver(t, m, modal.SubmitMsg{Values: map[string]string{"type": "model", "url": "https://example.com/m"}})

	assert.Equal(t, ViewBrowse, m.view)
	assert.NotNil(t, cmd)
}

func TestSubmitModal_CancelCloses(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("s"))
	m, _ = deliver(t, m, modal.CancelMsg{})
	assert.Equal(t, ViewBrowse, m.view)
}

func TestSubmitted_SuccessRefreshesCatalog(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	before := m.searchSeq
	artifact := registry.Artifact{Metadata: registry.ArtifactMetadata{ID: "new-id", Name: "new-model"}}
	m, cmd := deliver(t, m, artifactSubmittedMsg{artifact: artifact})

	assert.Equal(t, stateLoading, m.state)
	assert.Equal(t, before+1, m.searchSeq)
	assert.NotNil(t, cmd)
}

func TestSubmitted_FailureShowsToast(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	_, cmd := deliver(t, m, artifactSubmittedMsg{err: fmt.Errorf("status 409")})
	require.NotNil(t, cmd)

	toast, ok := cmd().(mode.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, toaster.StyleError, toast.Style)
	assert.Contains(t, toast.Message, "409")
}

func TestHelpOverlayToggle(t *testing.T) {
	m := newTestModel(t)
	m, _ = deliver(t, m, catalogResultMsg{seq: m.searchSeq, summaries: summaries("bert")})

	m, _ = deliver(t, m, keyRunes("?"))
	assert.Equal(t, ViewHelp, m.view)
	assert.Contains(t, m.View(), "Browse Mode Help")

	m, _ = deliver(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBrowse, m.view)
}

func TestRefresh_ReplaysLastQuery(t *testing.T) {
	m := newTestModel(t)
	m.lastQuery = "bert.*"

	before := m.searchSeq
	next, cmd := m.Refresh()
	m = next.(Model)

	assert.Equal(t, before+1, m.searchSeq)
	assert.True(t, m.searching)
	assert.Equal(t, "bert.*", m.lastQuery)
	assert.NotNil(t, cmd)
}
