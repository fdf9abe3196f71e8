package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/order"
	"github.com/mmcdole/storefront/internal/tui/components"
	"github.com/mmcdole/storefront/internal/tui/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the current screen and any overlay
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.Overlay == OverlayHelp {
		return m.renderHelp()
	}

	var body string
	switch m.Screen {
	case ScreenLogin:
		body = m.renderCentered(m.renderBanner() + "\n\n" + m.LoginForm.View() + "\n" +
			styles.DimStyle.Render("ctrl+s create an account · esc quit"))
	case ScreenSignup:
		body = m.renderCentered(m.renderBanner() + "\n\n" + m.SignupForm.View())
	case ScreenProductForm:
		body = m.renderCentered(m.ProductForm.View())
	case ScreenDetail:
		body = m.renderCentered(m.renderDetail())
	case ScreenOrder:
		body = m.renderCentered(m.renderOrder())
	default:
		body = m.renderCatalog()
	}

	header := m.renderNavbar()
	if m.Screen == ScreenCatalog {
		header = lipgloss.JoinVertical(lipgloss.Left, header, m.renderCategoryBar())
	}
	view := lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())

	switch {
	case m.Overlay == OverlayConfirmDelete && m.pendingDelete != nil:
		view = m.place(components.RenderConfirm("Delete product?",
			fmt.Sprintf("%q will be removed from the store.", m.pendingDelete.Name)))
	case m.Overlay == OverlayConfirmLogout:
		view = m.place(components.RenderConfirm("Log out?",
			"Your remembered session will be forgotten."))
	case m.QuickOpen.IsVisible():
		view = m.QuickOpen.View()
	case m.SortModal.IsVisible():
		view = m.place(m.SortModal.View())
	}
	return view
}

// place centers content in the whole window
func (m Model) place(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}

// renderCentered centers content in the area between header and footer
func (m Model) renderCentered(content string) string {
	height := m.Height - 2
	if m.Screen == ScreenCatalog {
		height = m.Height - ChromeHeight
	}
	return lipgloss.Place(m.Width, max(height, 1), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderBanner() string {
	return styles.TitleStyle.Render("Storefront") + "\n" +
		styles.SubtitleStyle.Render("Browse the catalog and order from your terminal")
}

// renderNavbar renders the top bar with the signed-in user
func (m Model) renderNavbar() string {
	left := "Storefront"
	var right string
	if s := m.sessions.Current(); s.Valid() {
		right = s.Username
		if s.IsAdmin {
			right += " [admin]"
		}
	}
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.NavbarStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderCategoryBar renders the category tabs plus the search and sort state
func (m Model) renderCategoryBar() string {
	if m.Engine == nil {
		return ""
	}
	view := m.Engine.View()

	var right []string
	switch {
	case m.searching:
		right = append(right, m.SearchInput.View())
	case view.Search != "":
		right = append(right, styles.FilterStyle.Render("/ "+view.Search))
	}
	if view.Sort != domain.SortNone {
		right = append(right, styles.DimBadgeStyle.Render(view.Sort.Label()))
	}
	rightText := strings.Join(right, " ")
	rightWidth := lipgloss.Width(rightText)

	bar := components.RenderCategoryBar(m.categories, view.Category, max(m.Width-rightWidth-1, 10))
	gap := max(m.Width-lipgloss.Width(bar)-rightWidth, 1)
	return bar + strings.Repeat(" ", gap) + rightText
}

// renderCatalog renders the product list and inspector
func (m Model) renderCatalog() string {
	layout := m.calculateLayout()
	m.List.SetFocused(!m.searching)
	if layout.inspectorWidth == 0 {
		return m.List.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.List.View(), m.Inspector.View())
}

// renderDetail renders the product detail page
func (m Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	p := *m.detail
	width := min(max(m.Width-10, 30), 90)

	var b strings.Builder
	b.WriteString(components.RenderProductHeader(p, width))
	b.WriteString("\n\n")
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		b.WriteString(styles.DimStyle.Render("No description"))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(desc))
	}
	b.WriteString("\n\n")

	if p.AvailableItems > 0 {
		b.WriteString(styles.SubtitleStyle.Render("Quantity  "))
		b.WriteString(styles.HelpKeyStyle.Render("-"))
		b.WriteString(styles.TitleStyle.Render(fmt.Sprintf(" %d ", m.quantity)))
		b.WriteString(styles.HelpKeyStyle.Render("+"))
		b.WriteString(styles.DimStyle.Render("   total "))
		b.WriteString(styles.PriceStyle.Render(formatTotal(p.Price, m.quantity)))
		b.WriteString("\n\n")
	}

	hints := []string{"b buy", "o open image", "esc back"}
	if m.isAdmin() {
		hints = append(hints, "e edit", "d delete")
	}
	b.WriteString(styles.DimStyle.Render(strings.Join(hints, " · ")))

	return styles.ModalStyle.Width(width + 6).Render(b.String())
}

// renderOrder renders the checkout wizard
func (m Model) renderOrder() string {
	w := m.Wizard
	if w == nil {
		return ""
	}
	width := min(max(m.Width-10, 40), 80)

	var b strings.Builder
	b.WriteString(renderSteps(w.Step()))
	b.WriteString("\n\n")

	item := w.Item()
	switch w.Step() {
	case order.StepItems:
		b.WriteString(renderOrderItem(item, width))
		b.WriteString("\n\n")
		b.WriteString(styles.DimStyle.Render("enter continue · esc cancel"))

	case order.StepSelectAddress:
		if m.addingAddress {
			return m.AddressForm.View()
		}
		b.WriteString(m.renderAddresses(w, width))
		b.WriteString("\n\n")
		b.WriteString(styles.DimStyle.Render("j/k move · enter select · a new address · esc back"))

	case order.StepConfirm:
		b.WriteString(renderOrderItem(item, width))
		b.WriteString("\n\n")
		if addr, ok := w.Selected(); ok {
			b.WriteString(styles.SubtitleStyle.Render("Ship to"))
			b.WriteString("\n")
			b.WriteString(styles.Truncate(addr.Label(), width))
			b.WriteString("\n")
			b.WriteString(styles.DimStyle.Render(styles.Truncate(addr.State+" "+addr.ZipCode+" · "+addr.ContactNumber, width)))
			b.WriteString("\n\n")
		}
		if m.saving {
			b.WriteString(m.spinner() + styles.DimStyle.Render(" Placing order..."))
		} else {
			b.WriteString(styles.DimStyle.Render("enter place order · esc back"))
		}
	}

	if err := w.InlineError(); err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorStyle.Render(err.Error()))
	}

	return styles.ModalStyle.Width(width + 6).Render(b.String())
}

func (m Model) renderAddresses(w *order.Wizard, width int) string {
	addrs := w.Addresses()
	if len(addrs) == 0 {
		if m.Loading {
			return m.spinner() + styles.DimStyle.Render(" Loading addresses...")
		}
		return styles.DimStyle.Render("No saved addresses. Press a to add one.")
	}

	selected, _ := w.Selected()
	lines := make([]string, 0, len(addrs))
	for i, a := range addrs {
		mark := "  "
		if a.ID == selected.ID {
			mark = "✓ "
		}
		lines = append(lines, styles.RenderListRow(
			[]styles.RowPart{{Text: mark + styles.Truncate(a.Label(), width-6)}},
			i == m.addressCursor, width))
	}
	return strings.Join(lines, "\n")
}

func renderOrderItem(item order.Item, width int) string {
	p := item.Product
	return styles.TitleStyle.Render(styles.Truncate(p.Name, width)) + "\n" +
		styles.DimStyle.Render(fmt.Sprintf("%s × %d", p.FormattedPrice(), item.Quantity)) + "\n" +
		styles.SubtitleStyle.Render("Total ") + styles.PriceStyle.Render(formatTotal(p.Price, item.Quantity))
}

// renderSteps renders the wizard progress with the current step highlighted
func renderSteps(current order.Step) string {
	var parts []string
	for _, s := range order.Steps() {
		switch {
		case s == current:
			parts = append(parts, styles.BadgeStyle.Render(s.String()))
		case s < current:
			parts = append(parts, styles.SuccessStyle.Render("✓ "+s.String()))
		default:
			parts = append(parts, styles.DimStyle.Render(s.String()))
		}
	}
	return strings.Join(parts, styles.DimStyle.Render(" › "))
}

func formatTotal(price decimal.Decimal, quantity int) string {
	return "₹ " + price.Mul(decimal.NewFromInt(int64(quantity))).StringFixedBank(2)
}

func (m Model) spinner() string {
	return styles.AccentStyle.Render(spinnerFrames[m.SpinnerFrame%len(spinnerFrames)])
}

// renderFooter renders a single-line status bar
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	case m.saving:
		left = m.spinner() + " " + styles.DimStyle.Render("Working...")
	case m.Loading:
		left = m.spinner() + " " + styles.DimStyle.Render("Loading catalog...")
	default:
		if notice := m.staleNotice(); notice != "" {
			left = styles.ErrorStyle.Render(notice)
		}
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	if m.Screen == ScreenLogin || m.Screen == ScreenSignup {
		right = ""
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// staleNotice describes the catalog when the last refresh failed and the
// list shows an older copy.
func (m Model) staleNotice() string {
	if m.Engine == nil || m.Engine.LastError() == nil {
		return ""
	}
	if m.Screen != ScreenCatalog && m.Screen != ScreenDetail {
		return ""
	}
	fetched := m.Engine.FetchedAt()
	if fetched.IsZero() {
		return "Catalog unavailable, press r to retry"
	}
	return "Offline, showing catalog from " + fetched.Format("Jan 2 15:04") + " (r to retry)"
}

// helpSection is a titled group of bindings on the help screen
type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelp renders the help screen from the active key bindings
func (m Model) renderHelp() string {
	sections := []helpSection{
		{"BROWSE", []key.Binding{
			components.ListKeys.Down, components.ListKeys.Up, components.ListKeys.Home,
			components.ListKeys.End, components.ListKeys.HalfDown, components.ListKeys.HalfUp,
			Keys.NextCategory, Keys.PrevCategory,
		}},
		{"FIND", []key.Binding{
			Keys.Search, Keys.QuickOpen, Keys.Sort, Keys.Escape, Keys.Refresh,
		}},
		{"PRODUCT", []key.Binding{
			Keys.Open, Keys.Buy, Keys.OpenImage, Keys.Increase, Keys.Decrease,
			Keys.ScrollDown, Keys.ScrollUp,
		}},
	}
	if m.isAdmin() {
		sections = append(sections, helpSection{"ADMIN", []key.Binding{Keys.Add, Keys.Edit, Keys.Delete}})
	}
	sections = append(sections, helpSection{"OTHER", []key.Binding{Keys.Logout, Keys.Help, Keys.Quit}})

	var cols []string
	for _, s := range sections {
		lines := []string{styles.ModalTitleStyle.Render(s.title)}
		for _, b := range s.bindings {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(4).Render(strings.Join(lines, "\n")))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n\n" +
		styles.DimStyle.Render("Press ? or esc to return")
	return m.place(styles.ModalStyle.Render(content))
}
