package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/tui/styles"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants for the product list
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Title line plus the "↑ more" / "↓ more" indicators
	listChromeLines = 3

	priceColumnWidth = 14
)

// ProductList is a scrollable list of products
type ProductList struct {
	products []domain.Product

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool
	title   string

	loading      bool
	spinnerFrame int
	emptyHint    string // Shown instead of "No products" when set
}

// NewProductList creates an empty product list
func NewProductList(title string) *ProductList {
	return &ProductList{title: title, maxVisible: 1}
}

// SetProducts replaces the list contents. The cursor stays on the same
// product when it is still present.
func (l *ProductList) SetProducts(products []domain.Product) {
	var keepID string
	if p := l.Selected(); p != nil {
		keepID = p.ID
	}
	l.products = products
	l.loading = false
	l.cursor = 0
	l.offset = 0
	if keepID != "" {
		l.SelectID(keepID)
	}
	l.ensureVisible()
}

// Products returns the listed products
func (l *ProductList) Products() []domain.Product {
	return l.products
}

// SelectID moves the cursor to the product with id. Returns false when
// the product is not listed.
func (l *ProductList) SelectID(id string) bool {
	for i, p := range l.products {
		if p.ID == id {
			l.cursor = i
			l.ensureVisible()
			return true
		}
	}
	return false
}

// Selected returns the product under the cursor, or nil
func (l *ProductList) Selected() *domain.Product {
	if l.cursor < 0 || l.cursor >= len(l.products) {
		return nil
	}
	p := l.products[l.cursor]
	return &p
}

// Cursor returns the cursor index
func (l *ProductList) Cursor() int {
	return l.cursor
}

func (l *ProductList) SetTitle(title string)     { l.title = title }
func (l *ProductList) SetFocused(focused bool)   { l.focused = focused }
func (l *ProductList) SetLoading(loading bool)   { l.loading = loading }
func (l *ProductList) SetSpinnerFrame(frame int) { l.spinnerFrame = frame }
func (l *ProductList) SetEmptyHint(hint string)  { l.emptyHint = hint }

// SetSize updates the list dimensions
func (l *ProductList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.maxVisible = max(height-BorderHeight-listChromeLines, 1)
	l.ensureVisible()
}

// HandleKey moves the cursor. Returns true when the key was a list key.
func (l *ProductList) HandleKey(msg tea.KeyMsg) bool {
	count := len(l.products)
	switch {
	case key.Matches(msg, ListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
		}
	case key.Matches(msg, ListKeys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, ListKeys.Home):
		l.cursor = 0
	case key.Matches(msg, ListKeys.End):
		l.cursor = count - 1
	case key.Matches(msg, ListKeys.HalfDown):
		l.cursor += l.maxVisible / 2
	case key.Matches(msg, ListKeys.HalfUp):
		l.cursor -= l.maxVisible / 2
	case key.Matches(msg, ListKeys.PageDown):
		l.cursor += l.maxVisible
	case key.Matches(msg, ListKeys.PageUp):
		l.cursor -= l.maxVisible
	default:
		return false
	}
	l.cursor = min(max(l.cursor, 0), max(count-1, 0))
	l.ensureVisible()
	return true
}

func (l *ProductList) ensureVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list inside a border
func (l *ProductList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

func (l *ProductList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	if l.loading && len(l.products) == 0 {
		spinner := spinnerFrames[l.spinnerFrame%len(spinnerFrames)]
		return titleLine + "\n \n" + styles.DimStyle.Render(spinner+" Loading products...")
	}

	count := len(l.products)
	if count == 0 {
		hint := "No products"
		if l.emptyHint != "" {
			hint = l.emptyHint
		}
		return titleLine + "\n \n" + styles.DimStyle.Render(hint)
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, renderProductRow(l.products[i], i == l.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render(fmt.Sprintf("↓ %d more", count-end))
	}

	return titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
}

func renderProductRow(p domain.Product, selected bool, width int) string {
	price := p.FormattedPrice()
	nameWidth := max(width-priceColumnWidth-4, 4)

	name := styles.Pad(styles.Truncate(p.Name, nameWidth), nameWidth)
	priceText := fmt.Sprintf("%*s", priceColumnWidth, price)
	priceFg := styles.Amber

	parts := []styles.RowPart{
		{Text: name},
		{Text: priceText, Foreground: &priceFg},
	}
	if p.AvailableItems == 0 {
		dim := styles.DimGray
		parts[0].Foreground = &dim
	}
	return styles.RenderListRow(parts, selected, width)
}

// RenderCategoryBar renders the category tabs with active highlighted
func RenderCategoryBar(categories []string, active string, width int) string {
	var tabs []string
	for _, c := range categories {
		if c == active {
			tabs = append(tabs, styles.CategoryActiveStyle.Render(c))
		} else {
			tabs = append(tabs, styles.CategoryStyle.Render(c))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if lipgloss.Width(bar) > width && width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}
