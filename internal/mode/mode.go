// Package mode defines the mode controller interface and shared services.
package mode

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmallory/curio/internal/config"
	"github.com/dmallory/curio/internal/mode/shared"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/ui/toaster"
)

// AppMode identifies the current application mode.
type AppMode int

const (
	ModeBrowse AppMode = iota
	ModeInspect
)

// Controller defines the interface all modes must implement.
type Controller interface {
	// Init returns initial commands for the mode.
	Init() tea.Cmd

	// Update handles messages and returns updated model and commands.
	Update(msg tea.Msg) (Controller, tea.Cmd)

	// View renders the mode's UI.
	View() string

	// SetSize handles terminal resize events.
	SetSize(width, height int) Controller
}

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	Client     *registry.Client
	Cache      *registry.DetailCache
	Enricher   *registry.Enricher
	Submitter  *registry.Submitter
	Config     *config.Config
	ConfigPath string
	Clipboard  shared.Clipboard
}

// ShowToastMsg asks the app to display a transient notification.
// Modes emit it instead of owning their own toaster.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}
