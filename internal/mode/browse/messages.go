package browse

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/toaster"
)

// Message types

// catalogResultMsg carries the outcome of a list or search request.
// seq ties the response to the request that issued it so stale
// completions can be discarded.
type catalogResultMsg struct {
	seq        int
	summaries  []registry.ArtifactSummary
	err        error
	fromSearch bool
	query      string
}

// detailResolvedMsg signals that enrichment for one artifact resolved.
type detailResolvedMsg struct {
	id string
}

// artifactSubmittedMsg carries the outcome of a submission.
type artifactSubmittedMsg struct {
	artifact registry.Artifact
	err      error
}

// historySavedMsg carries the outcome of persisting search history.
type historySavedMsg struct {
	err error
}

// OpenInspectMsg asks the app to switch to inspect mode for one
// artifact.
type OpenInspectMsg struct {
	ID   string
	Type registry.ArtifactType
}

// Async commands

// listCmd enumerates the whole catalog. The sequence token travels
// with the response so the controller can discard stale completions.
func listCmd(client *registry.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		summaries, err := client.List(context.Background())
		return catalogResultMsg{seq: seq, summaries: summaries, err: err}
	}
}

// searchCmd runs a regex search under the given sequence token.
func searchCmd(client *registry.Client, seq int, query string) tea.Cmd {
	return func() tea.Msg {
		summaries, err := client.Search(context.Background(), query)
		return catalogResultMsg{seq: seq, summaries: summaries, err: err, fromSearch: true, query: query}
	}
}

// enrichCmd resolves one artifact's details through the coalescing
// cache. Enrichment never fails; degraded records carry N/A fields.
func enrichCmd(cache *registry.DetailCache, enricher *registry.Enricher, summary registry.ArtifactSummary) tea.Cmd {
	return func() tea.Msg {
		_, _ = cache.GetOrFetch(context.Background(), summary.ID, summary.Type, enricher.Details)
		return detailResolvedMsg{id: summary.ID}
	}
}

// submitCmd registers a new artifact with retry semantics.
func submitCmd(submitter *registry.Submitter, req registry.SubmissionRequest) tea.Cmd {
	return func() tea.Msg {
		artifact, err := submitter.Submit(context.Background(), req)
		return artifactSubmittedMsg{artifact: artifact, err: err}
	}
}

// openInspectCmd requests the mode switch to inspect.
func openInspectCmd(summary registry.ArtifactSummary) tea.Cmd {
	return func() tea.Msg {
		return OpenInspectMsg{ID: summary.ID, Type: summary.Type}
	}
}

// showToast asks the app-level toaster for a notification.
func showToast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg {
		return mode.ShowToastMsg{Message: message, Style: style}
	}
}
