package tui

// Layout proportions
const (
	DefaultInspectorPercent = 40
	MinColumnWidth          = 24

	// Navbar and category bar above the content, status line below
	HeaderHeight = 2
	ChromeHeight = HeaderHeight + 1

	// Below this width the inspector is hidden
	NarrowWidth = 70
)

// catalogLayout holds calculated widths for the catalog screen
type catalogLayout struct {
	listWidth      int
	inspectorWidth int // 0 if not shown
	contentHeight  int
}

// calculateLayout splits the window between list and inspector
func (m Model) calculateLayout() catalogLayout {
	layout := catalogLayout{
		listWidth:     m.Width,
		contentHeight: max(m.Height-ChromeHeight, 3),
	}
	if m.Width < NarrowWidth {
		return layout
	}

	percent := m.inspectorPercent
	if percent <= 0 || percent >= 80 {
		percent = DefaultInspectorPercent
	}
	layout.inspectorWidth = max(m.Width*percent/100, MinColumnWidth)
	layout.listWidth = max(m.Width-layout.inspectorWidth, MinColumnWidth)
	return layout
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	layout := m.calculateLayout()
	m.List.SetSize(layout.listWidth, layout.contentHeight)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, layout.contentHeight)
	}

	m.QuickOpen.SetSize(m.Width, m.Height)
	formWidth := min(max(m.Width-10, 40), 80)
	m.LoginForm.SetWidth(formWidth)
	m.SignupForm.SetWidth(formWidth)
	m.ProductForm.SetWidth(formWidth)
	m.AddressForm.SetWidth(formWidth)
}
