package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/order"
	"github.com/mmcdole/storefront/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Handle overlay-specific keys
	switch m.Overlay {
	case OverlayHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.Overlay = OverlayNone
		}
		return m, nil

	case OverlayConfirmDelete:
		switch {
		case key.Matches(msg, Keys.Confirm):
			p := m.pendingDelete
			m.pendingDelete = nil
			m.Overlay = OverlayNone
			if p == nil || m.Engine == nil {
				return m, nil
			}
			cmd := m.startSaving(DeleteProductCmd(m.Engine, p.ID))
			return m, cmd
		case key.Matches(msg, Keys.Deny):
			m.pendingDelete = nil
			m.Overlay = OverlayNone
		}
		return m, nil

	case OverlayConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.sessions.Logout()
			return m.toLogin()
		case key.Matches(msg, Keys.Deny):
			m.Overlay = OverlayNone
		}
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	switch m.Screen {
	case ScreenLogin:
		return m.handleLoginKey(msg)
	case ScreenSignup:
		return m.handleSignupKey(msg)
	case ScreenProductForm:
		return m.handleProductFormKey(msg)
	case ScreenDetail:
		return m.handleDetailKey(msg)
	case ScreenOrder:
		return m.handleOrderKey(msg)
	default:
		return m.handleCatalogKey(msg)
	}
}

// routeToModal sends keys to the quick-open palette, the sort modal or
// the search input when one of them is active.
func (m Model) routeToModal(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	if m.QuickOpen.IsVisible() {
		var cmd tea.Cmd
		var chosen bool
		m.QuickOpen, cmd, chosen = m.QuickOpen.Update(msg)
		if chosen {
			if p := m.QuickOpen.Selected(); p != nil {
				next, jumpCmd := m.jumpTo(*p)
				return true, next, jumpCmd
			}
		}
		return true, m, cmd
	}

	if m.SortModal.IsVisible() {
		handled, selection := m.SortModal.HandleKey(msg)
		if selection != nil && m.Engine != nil {
			m.Engine.SetSort(*selection)
			m.syncCatalog()
		}
		return handled, m, nil
	}

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.SearchInput.Blur()
			m.SearchInput.SetValue("")
			m.Engine.SetSearch("")
			m.syncCatalog()
			return true, m, nil
		case "enter", "down", "up":
			m.searching = false
			m.SearchInput.Blur()
			return true, m, nil
		}
		var cmd tea.Cmd
		m.SearchInput, cmd = m.SearchInput.Update(msg)
		if v := m.SearchInput.Value(); v != m.Engine.View().Search {
			m.Engine.SetSearch(v)
			m.syncCatalog()
		}
		return true, m, cmd
	}

	return false, m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Signup) {
		m.Screen = ScreenSignup
		m.SignupForm.SetError("")
		if email := m.LoginForm.Value("username"); email != "" {
			m.SignupForm.SetValue("email", email)
		}
		return m, m.SignupForm.Init()
	}

	var cmd tea.Cmd
	var result components.FormResult
	m.LoginForm, cmd, result = m.LoginForm.Update(msg)
	switch result {
	case components.FormCancelled:
		return m, tea.Quit
	case components.FormSubmitted:
		if m.saving {
			return m, nil
		}
		m.LoginForm.SetError("")
		creds := domain.Credentials{
			Username: m.LoginForm.Value("username"),
			Password: m.LoginForm.Value("password"),
		}
		cmd = m.startSaving(LoginCmd(m.sessions, creds))
		return m, cmd
	}
	return m, cmd
}

func (m Model) handleSignupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var result components.FormResult
	m.SignupForm, cmd, result = m.SignupForm.Update(msg)
	switch result {
	case components.FormCancelled:
		m.Screen = ScreenLogin
		return m, nil
	case components.FormSubmitted:
		if m.saving {
			return m, nil
		}
		f := m.SignupForm
		m.SignupForm.SetError("")
		req := domain.SignupRequest{
			FirstName:       f.Value("firstName"),
			LastName:        f.Value("lastName"),
			Email:           f.Value("email"),
			Password:        f.Value("password"),
			ConfirmPassword: f.Value("confirmPassword"),
			ContactNumber:   f.Value("contactNumber"),
		}
		cmd = m.startSaving(SignupCmd(m.sessions, req))
		return m, cmd
	}
	return m, cmd
}

func (m Model) handleProductFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var result components.FormResult
	m.ProductForm, cmd, result = m.ProductForm.Update(msg)
	switch result {
	case components.FormCancelled:
		m.draft = nil
		m.Screen = m.returnTo
		if m.Screen == ScreenProductForm {
			m.Screen = ScreenCatalog
		}
		return m, nil
	case components.FormSubmitted:
		return m.submitProductForm()
	}
	return m, cmd
}

// handleCatalogKey handles the product list screen
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.List.HandleKey(msg) {
		m.updateInspector()
		return m, nil
	}

	selected := m.List.Selected()

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.Overlay = OverlayHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		// Clear the search first, then the category
		view := m.Engine.View()
		switch {
		case view.Search != "":
			m.Engine.SetSearch("")
			m.SearchInput.SetValue("")
			m.syncCatalog()
		case view.Category != domain.CategoryAll:
			m.Engine.SetFilter(domain.CategoryAll)
			m.syncCatalog()
		}
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.searching = true
		m.SearchInput.SetValue(m.Engine.View().Search)
		m.SearchInput.CursorEnd()
		cmd := m.SearchInput.Focus()
		return m, cmd

	case key.Matches(msg, Keys.QuickOpen):
		m.QuickOpen.Show(m.Engine.Products())
		return m, m.QuickOpen.Init()

	case key.Matches(msg, Keys.Sort):
		m.SortModal.Show(m.Engine.View().Sort)
		return m, nil

	case key.Matches(msg, Keys.NextCategory):
		m.selectCategory(1)
		return m, nil

	case key.Matches(msg, Keys.PrevCategory):
		m.selectCategory(-1)
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		if m.Loading {
			return m, nil
		}
		cmd := m.startLoading(RefreshCmd(m.Engine))
		return m, cmd

	case key.Matches(msg, Keys.ScrollDown):
		m.Inspector.ScrollDown()
		return m, nil

	case key.Matches(msg, Keys.ScrollUp):
		m.Inspector.ScrollUp()
		return m, nil

	case key.Matches(msg, Keys.Logout):
		m.Overlay = OverlayConfirmLogout
		return m, nil
	}

	if selected == nil {
		return m.handleAdminKey(msg, nil)
	}

	switch {
	case key.Matches(msg, Keys.Open):
		return m.openDetail(*selected)
	case key.Matches(msg, Keys.Buy):
		return m.startOrder(*selected, 1)
	case key.Matches(msg, Keys.OpenImage):
		return m.openImage(*selected)
	}
	return m.handleAdminKey(msg, selected)
}

// handleAdminKey handles add, edit and delete. p is nil when the list
// is empty, which leaves only add.
func (m Model) handleAdminKey(msg tea.KeyMsg, p *domain.Product) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, Keys.Add, Keys.Edit, Keys.Delete) {
		return m, nil
	}
	if !m.isAdmin() {
		cmd := m.setStatus("Only admins can change the catalog", true)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Add):
		return m.openProductForm(nil)
	case p == nil:
		return m, nil
	case key.Matches(msg, Keys.Edit):
		return m.openProductForm(p)
	default:
		m.pendingDelete = p
		m.Overlay = OverlayConfirmDelete
		return m, nil
	}
}

func (m Model) openImage(p domain.Product) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(p.ImageURL) == "" {
		cmd := m.setStatus("No image for "+p.Name, true)
		return m, cmd
	}
	if m.opener == nil {
		return m, nil
	}
	return m, OpenLinkCmd(m.opener, p.ImageURL)
}

// handleDetailKey handles the product detail screen
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.Screen = ScreenCatalog
		return m, nil
	}
	p := *m.detail

	switch {
	case key.Matches(msg, Keys.Back):
		m.detail = nil
		m.Screen = ScreenCatalog
		return m, nil
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.Overlay = OverlayHelp
		return m, nil
	case key.Matches(msg, Keys.Increase):
		m.quantity = clampQuantity(m.quantity+1, p)
		return m, nil
	case key.Matches(msg, Keys.Decrease):
		m.quantity = clampQuantity(m.quantity-1, p)
		return m, nil
	case key.Matches(msg, Keys.Buy, Keys.Open):
		return m.startOrder(p, m.quantity)
	case key.Matches(msg, Keys.OpenImage):
		return m.openImage(p)
	case key.Matches(msg, Keys.Refresh):
		return m, LoadProductCmd(m.Engine, p.ID)
	}
	return m.handleAdminKey(msg, &p)
}

// handleOrderKey drives the checkout wizard
func (m Model) handleOrderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Wizard == nil {
		m.Screen = ScreenCatalog
		return m, nil
	}

	if m.addingAddress {
		var cmd tea.Cmd
		var result components.FormResult
		m.AddressForm, cmd, result = m.AddressForm.Update(msg)
		switch result {
		case components.FormCancelled:
			m.addingAddress = false
			return m, nil
		case components.FormSubmitted:
			return m.submitAddressForm()
		}
		return m, cmd
	}

	switch m.Wizard.Step() {
	case order.StepItems:
		switch {
		case key.Matches(msg, Keys.Back):
			return m.leaveOrder()
		case key.Matches(msg, Keys.Open, Keys.NextCategory):
			_ = m.Wizard.Next()
		}

	case order.StepSelectAddress:
		addrs := m.Wizard.Addresses()
		switch {
		case key.Matches(msg, Keys.Back, Keys.PrevCategory):
			m.Wizard.Back()
		case key.Matches(msg, components.ListKeys.Down):
			if m.addressCursor < len(addrs)-1 {
				m.addressCursor++
			}
		case key.Matches(msg, components.ListKeys.Up):
			if m.addressCursor > 0 {
				m.addressCursor--
			}
		case key.Matches(msg, Keys.NewAddress):
			m.addingAddress = true
			m.AddressForm.Reset()
			return m, m.AddressForm.Init()
		case key.Matches(msg, Keys.Open, Keys.NextCategory):
			if m.addressCursor < len(addrs) {
				_ = m.Wizard.SelectAddress(addrs[m.addressCursor].ID)
			}
			// Next records the inline error when nothing is selected
			_ = m.Wizard.Next()
		}

	case order.StepConfirm:
		switch {
		case key.Matches(msg, Keys.Back, Keys.PrevCategory):
			m.Wizard.Back()
		case key.Matches(msg, Keys.Open, Keys.Confirm):
			if m.saving {
				return m, nil
			}
			cmd := m.startSaving(PlaceOrderCmd(m.Wizard))
			return m, cmd
		}
	}
	return m, nil
}

// leaveOrder abandons the checkout
func (m Model) leaveOrder() (tea.Model, tea.Cmd) {
	m.Wizard = nil
	m.addingAddress = false
	m.Screen = m.returnTo
	if m.Screen == ScreenOrder || (m.Screen == ScreenDetail && m.detail == nil) {
		m.Screen = ScreenCatalog
	}
	return m, nil
}
