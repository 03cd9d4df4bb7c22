// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmallory/curio/internal/keys"
	"github.com/dmallory/curio/internal/ui/overlay"
	"github.com/dmallory/curio/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// HelpMode indicates which mode's help to display.
type HelpMode int

const (
	ModeBrowse HelpMode = iota
	ModeInspect
)

// Model holds the help view state.
type Model struct {
	browseKeys  keys.BrowseKeyMap
	inspectKeys keys.InspectKeyMap
	mode        HelpMode
	width       int
	height      int
}

// New creates a new help view for browse mode.
func New() Model {
	return Model{
		browseKeys: keys.DefaultBrowseKeyMap(),
		mode:       ModeBrowse,
	}
}

// NewInspect creates a new help view for inspect mode.
func NewInspect() Model {
	return Model{
		inspectKeys: keys.DefaultInspectKeyMap(),
		mode:        ModeInspect,
	}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	helpBox := m.renderContent()

	if background == "" {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			helpBox,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, helpBox, background)
}

func (m Model) renderContent() string {
	if m.mode == ModeInspect {
		return m.renderInspectContent()
	}
	return m.renderBrowseContent()
}

// renderBrowseContent renders the browse mode help.
func (m Model) renderBrowseContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var searchCol strings.Builder
	searchCol.WriteString(sectionStyle.Render("Search"))
	searchCol.WriteString("\n")
	searchCol.WriteString(renderBinding(m.browseKeys.FocusSearch))
	searchCol.WriteString(renderBinding(m.browseKeys.Execute))
	searchCol.WriteString(renderBinding(m.browseKeys.Blur))
	searchCol.WriteString(renderBinding(m.browseKeys.HistPrev))
	searchCol.WriteString(renderBinding(m.browseKeys.HistNext))

	var actionsCol strings.Builder
	actionsCol.WriteString(sectionStyle.Render("Actions"))
	actionsCol.WriteString("\n")
	actionsCol.WriteString(renderBinding(m.browseKeys.Inspect))
	actionsCol.WriteString(renderBinding(m.browseKeys.Enrich))
	actionsCol.WriteString(renderBinding(m.browseKeys.Refresh))
	actionsCol.WriteString(renderBinding(m.browseKeys.Submit))
	actionsCol.WriteString(renderBinding(m.browseKeys.Yank))

	var generalCol strings.Builder
	generalCol.WriteString(sectionStyle.Render("General"))
	generalCol.WriteString("\n")
	generalCol.WriteString(renderKeyDesc("j/k", "move up/down"))
	generalCol.WriteString(renderBinding(m.browseKeys.Help))
	generalCol.WriteString(renderBinding(m.browseKeys.Logs))
	generalCol.WriteString(renderBinding(m.browseKeys.Quit))

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(searchCol.String()),
		columnStyle.Render(actionsCol.String()),
		generalCol.String(),
	)

	return m.wrapInBox("Browse Mode Help", columns)
}

// renderInspectContent renders the inspect mode help.
func (m Model) renderInspectContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var navCol strings.Builder
	navCol.WriteString(sectionStyle.Render("Navigation"))
	navCol.WriteString("\n")
	navCol.WriteString(renderBinding(m.inspectKeys.Up))
	navCol.WriteString(renderBinding(m.inspectKeys.Down))
	navCol.WriteString(renderBinding(m.inspectKeys.Back))

	var actionsCol strings.Builder
	actionsCol.WriteString(sectionStyle.Render("Actions"))
	actionsCol.WriteString("\n")
	actionsCol.WriteString(renderBinding(m.inspectKeys.Copy))
	actionsCol.WriteString(renderBinding(m.inspectKeys.Update))
	actionsCol.WriteString(renderBinding(m.inspectKeys.Delete))
	actionsCol.WriteString(renderBinding(m.inspectKeys.Refresh))

	var generalCol strings.Builder
	generalCol.WriteString(sectionStyle.Render("General"))
	generalCol.WriteString("\n")
	generalCol.WriteString(renderBinding(m.inspectKeys.Help))
	generalCol.WriteString(renderBinding(m.inspectKeys.Quit))

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(navCol.String()),
		columnStyle.Render(actionsCol.String()),
		generalCol.String(),
	)

	return m.wrapInBox("Inspect Mode Help", columns)
}

// wrapInBox frames the column content with a title, divider, and footer.
func (m Model) wrapInBox(title, columns string) string {
	columnsWidth := lipgloss.Width(columns)
	boxWidth := columnsWidth + 4 // Horizontal padding, 2 each side

	body := contentStyle.Render(columns + "\n" + footerStyle.Render("Press ? or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	help := b.Help()
	return renderKeyDesc(help.Key, help.Desc)
}

func renderKeyDesc(key, desc string) string {
	return keyStyle.Render(key) + descStyle.Render(desc) + "\n"
}
