package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/tui/styles"
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays details for the selected product
type Inspector struct {
	product    *domain.Product
	width      int
	height     int
	offset     int
	maxVisible int
	isAdmin    bool
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{maxVisible: 1}
}

// SetProduct sets the product to display; nil clears it
func (i *Inspector) SetProduct(p *domain.Product) {
	if i.product == nil || p == nil || i.product.ID != p.ID {
		i.offset = 0
	}
	i.product = p
}

// SetAdmin toggles the admin action hints in the footer
func (i *Inspector) SetAdmin(admin bool) {
	i.isAdmin = admin
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Border, title and blank line, scroll indicators
	i.maxVisible = max(height-BorderHeight-2-2, 1)
}

// ScrollDown moves the description down one line
func (i *Inspector) ScrollDown() { i.offset++ }

// ScrollUp moves the description up one line
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	contentWidth := max(i.width-3, 10)
	content := i.render(contentWidth)

	titleLine := styles.AccentStyle.Render("Details")

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	available := max(i.maxVisible-len(headerLines)-len(footerLines), 1)
	maxOffset := max(len(bodyLines)-available, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+available, len(bodyLines))
	visible := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visible...)
	for j := len(visible); j < available; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.product == nil {
		return inspectorContent{body: styles.DimStyle.Render("No product selected")}
	}
	return inspectorContent{
		header: RenderProductHeader(*i.product, width),
		body:   renderDescription(i.product.Description, width),
		footer: i.renderFooter(),
	}
}

// RenderProductHeader renders name, price and metadata lines
func RenderProductHeader(p domain.Product, width int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(p.Name, width)))
	b.WriteString("\n")
	b.WriteString(styles.PriceStyle.Render(p.FormattedPrice()))
	b.WriteString("\n")

	var meta []string
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	if p.Manufacturer != "" {
		meta = append(meta, p.Manufacturer)
	}
	if at, ok := p.AddedAt(); ok {
		meta = append(meta, "added "+at.Format("2 Jan 2006"))
	}
	if len(meta) > 0 {
		b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))
		b.WriteString("\n")
	}

	stock := styles.SuccessStyle.Render(fmt.Sprintf("%d available", p.AvailableItems))
	if p.AvailableItems == 0 {
		stock = styles.ErrorStyle.Render("Out of stock")
	}
	b.WriteString(stock)

	if p.ImageURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(styles.Truncate(p.ImageURL, width)))
	}
	return b.String()
}

func renderDescription(desc string, width int) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return styles.DimStyle.Render("No description")
	}
	return lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(desc)
}

func (i Inspector) renderFooter() string {
	hints := []string{"enter details", "b buy"}
	if i.isAdmin {
		hints = append(hints, "e edit", "d delete")
	}
	return styles.DimStyle.Render(strings.Join(hints, " · "))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
