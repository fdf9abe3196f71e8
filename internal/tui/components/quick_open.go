package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/search"
	"github.com/mmcdole/storefront/internal/tui/styles"
)

const quickOpenMaxResults = 10

// QuickOpen is the jump-to-product palette. It fuzzy-matches names over
// the whole catalog, ignoring the current category and search.
type QuickOpen struct {
	input     textinput.Model
	index     *search.Index
	results   []search.Result
	cursor    int
	visible   bool
	width     int
	height    int
	prevQuery string
}

// NewQuickOpen creates the palette
func NewQuickOpen() QuickOpen {
	ti := textinput.New()
	ti.Placeholder = "Jump to product..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "› "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return QuickOpen{input: ti}
}

// Show opens the palette over products
func (q *QuickOpen) Show(products []domain.Product) {
	q.visible = true
	q.index = search.NewIndex(products)
	q.input.SetValue("")
	q.input.Focus()
	q.prevQuery = ""
	q.cursor = 0
	q.results = q.index.Find("")
}

// Hide closes the palette
func (q *QuickOpen) Hide() {
	q.visible = false
	q.input.Blur()
}

// IsVisible returns true if the palette is open
func (q QuickOpen) IsVisible() bool {
	return q.visible
}

// SetSize updates the component dimensions
func (q *QuickOpen) SetSize(width, height int) {
	q.width = width
	q.height = height
	q.input.Width = max(width/2, 20)
}

// Query returns the current query
func (q QuickOpen) Query() string {
	return q.input.Value()
}

// Results returns the current matches
func (q QuickOpen) Results() []search.Result {
	return q.results
}

// Selected returns the highlighted product
func (q QuickOpen) Selected() *domain.Product {
	if q.cursor < 0 || q.cursor >= len(q.results) {
		return nil
	}
	p := q.results[q.cursor].Product
	return &p
}

// Init starts the cursor blink
func (q QuickOpen) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages. The bool is true when a product was chosen.
func (q QuickOpen) Update(msg tea.Msg) (QuickOpen, tea.Cmd, bool) {
	if !q.visible {
		return q, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			q.Hide()
			return q, nil, false
		case "enter":
			if len(q.results) > 0 {
				q.Hide()
				return q, nil, true
			}
			return q, nil, false
		case "down", "ctrl+n":
			if q.cursor < len(q.results)-1 {
				q.cursor++
			}
			return q, nil, false
		case "up", "ctrl+p":
			if q.cursor > 0 {
				q.cursor--
			}
			return q, nil, false
		}
	}

	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	if current := q.input.Value(); current != q.prevQuery {
		q.prevQuery = current
		q.results = q.index.Find(current)
		q.cursor = 0
	}
	return q, cmd, false
}

// View renders the palette centered in the window
func (q QuickOpen) View() string {
	if !q.visible {
		return ""
	}

	modalWidth := min(max(q.width*2/3, 40), 80)

	var b strings.Builder
	b.WriteString(q.input.View())
	b.WriteString("\n\n")

	switch {
	case len(q.results) == 0 && q.input.Value() != "":
		b.WriteString(styles.DimStyle.Render("No matches found"))
	default:
		count := min(len(q.results), quickOpenMaxResults)
		for i := 0; i < count; i++ {
			b.WriteString(renderQuickOpenRow(q.results[i], i == q.cursor, modalWidth-20))
			b.WriteString("\n")
		}
		if len(q.results) > quickOpenMaxResults {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", len(q.results)-quickOpenMaxResults)))
		}
	}

	content := lipgloss.NewStyle().Width(modalWidth - 4).Render(b.String())
	modal := styles.ModalStyle.Width(modalWidth).Render(content)
	return lipgloss.Place(q.width, q.height, lipgloss.Center, lipgloss.Center, modal)
}

func renderQuickOpenRow(r search.Result, selected bool, nameWidth int) string {
	name := styles.Truncate(r.Product.Name, nameWidth)
	badge := styles.DimBadgeStyle.Render(styles.Truncate(r.Product.Category, 10))
	return badge + " " + highlightMatches(name, r.MatchedIndexes, selected)
}

// highlightMatches styles the matched rune positions of text
func highlightMatches(text string, matched []int, selected bool) string {
	base := lipgloss.NewStyle().Foreground(styles.LightGray)
	hl := styles.MatchHighlightStyle
	if selected {
		base = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		hl = styles.MatchHighlightSelectedStyle
	}

	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(text) {
		if set[i] {
			b.WriteString(hl.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}
