package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	deviceStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)

	classStyles = map[Class]lipgloss.Style{
		ClassSuccess:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		ClassDanger:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		ClassWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		ClassSecondary: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func styled(s Slot) string {
	text := s.Text
	if text == "" {
		text = "-"
	}
	if style, ok := classStyles[s.Class]; ok {
		return style.Render(text)
	}
	return text
}

// Render writes a terminal view of every device and container in the store.
func Render(w io.Writer, store *Store) error {
	var b strings.Builder

	for _, device := range store.Devices() {
		fmt.Fprintf(&b, "%s  %s  %s %s  %s %s  %s %s\n",
			deviceStyle.Render(device.ID),
			styled(device.Status),
			mutedStyle.Render("last updated"), styled(device.LastUpdated),
			mutedStyle.Render("cpu"), styled(device.CPU),
			mutedStyle.Render("memory"), styled(device.Memory),
		)
		for _, container := range device.Containers {
			fmt.Fprintf(&b, "    %-12s  %s  %s\n", container.ID, styled(container.Status), styled(container.Update))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
