package browse

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/styles"
)

// Column widths for the enrichment cells.
const (
	ratingCellWidth = 6
	costCellWidth   = 12
)

// unresolvedCell is shown in a detail column before enrichment runs.
const unresolvedCell = "—"

// artifactItem wraps an ArtifactSummary for the list component.
type artifactItem struct {
	summary registry.ArtifactSummary
}

// FilterValue implements list.Item.
func (i artifactItem) FilterValue() string { return i.summary.Name }

// artifactDelegate renders catalog rows as
//
//	> [model][0.82  ][120 MB      ] bert-base-uncased
//
// Rating and cost come from the detail cache at render time; rows the
// user has not enriched show placeholder cells.
type artifactDelegate struct {
	cache *registry.DetailCache
}

func newArtifactDelegate(cache *registry.DetailCache) artifactDelegate {
	return artifactDelegate{cache: cache}
}

// Height returns the height of a single list item.
func (d artifactDelegate) Height() int { return 1 }

// Spacing returns the spacing between list items.
func (d artifactDelegate) Spacing() int { return 0 }

// Update handles updates for list items (no-op for read-only display).
func (d artifactDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render renders a single catalog row, marked as a mouse zone.
func (d artifactDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	summary := item.(artifactItem).summary

	prefix := " "
	if index == m.Index() {
		prefix = styles.SelectionIndicatorStyle.Render(">")
	}

	typeCell := typeStyle(summary.Type).Render("[" + styles.PadCell(string(summary.Type), 7) + "]")

	rating, cost := unresolvedCell, unresolvedCell
	ratingStyle, costStyle := styles.UnavailableStyle, styles.UnavailableStyle
	if d.cache != nil {
		if details, ok := d.cache.Get(summary.ID); ok {
			rating, cost = details.Rating, details.Cost
			if rating != registry.NotAvailable {
				ratingStyle = styles.RatingStyle
			}
			if cost != registry.NotAvailable {
				costStyle = styles.CostStyle
			}
		}
	}

	line := fmt.Sprintf("%s%s%s%s %s",
		prefix,
		typeCell,
		ratingStyle.Render("["+styles.PadCell(rating, ratingCellWidth)+"]"),
		costStyle.Render("["+styles.PadCell(cost, costCellWidth)+"]"),
		summary.Name,
	)

	_, _ = fmt.Fprint(w, zone.Mark(rowZoneID(summary.ID), line))
}

// typeStyle picks the color for an artifact type cell.
func typeStyle(t registry.ArtifactType) lipgloss.Style {
	switch t {
	case registry.TypeModel:
		return styles.TypeModelStyle
	case registry.TypeDataset:
		return styles.TypeDatasetStyle
	case registry.TypeCode:
		return styles.TypeCodeStyle
	default:
		return styles.UnavailableStyle
	}
}

// rowZoneID is the bubblezone mark for one catalog row.
func rowZoneID(id string) string {
	return "browse:row:" + id
}
