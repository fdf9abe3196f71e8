package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/storefront/internal/tui/styles"
)

// RenderConfirm renders a yes/no prompt box
func RenderConfirm(title, body string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		styles.SubtitleStyle.Render(body),
		"",
		styles.HelpKeyStyle.Render("y")+styles.HelpDescStyle.Render(" confirm   ")+
			styles.HelpKeyStyle.Render("n")+styles.HelpDescStyle.Render(" cancel"),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Red).
		Padding(1, 2).
		Render(content)
}
