package editor

import (
	"sync"

	"resumesync/internal/resume"
)

// Navigation is the editor's view state: which section is being edited and
// which panels are open.
type Navigation struct {
	mu               sync.Mutex
	active           resume.SectionKey
	sidebarOpen      bool
	sidebarCollapsed bool
	previewOpen      bool
}

func NewNavigation() *Navigation {
	n := &Navigation{}
	n.Reset()
	return n
}

func (n *Navigation) Active() resume.SectionKey {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// SetActive switches the edited section.
func (n *Navigation) SetActive(key resume.SectionKey) error {
	if !key.Valid() {
		return ErrUnknownSection
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = key
	return nil
}

func (n *Navigation) SidebarOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sidebarOpen
}

// ToggleSidebar shows or hides the section drawer on narrow layouts and
// returns the new state.
func (n *Navigation) ToggleSidebar() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sidebarOpen = !n.sidebarOpen
	return n.sidebarOpen
}

// SidebarCollapsed reports whether the docked section list is shrunk to icons.
func (n *Navigation) SidebarCollapsed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sidebarCollapsed
}

func (n *Navigation) SetSidebarCollapsed(collapsed bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sidebarCollapsed = collapsed
}

func (n *Navigation) PreviewOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.previewOpen
}

func (n *Navigation) SetPreview(open bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.previewOpen = open
}

// Reset returns to the header with every panel closed.
func (n *Navigation) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = resume.SectionHeader
	n.sidebarOpen = false
	n.sidebarCollapsed = false
	n.previewOpen = false
}
