package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Meter is a horizontal bar for a ratio in [0, 1]. The fill turns from
// Error through Warning to Success as the ratio crosses Low and High.
type Meter struct {
	Label string
	Ratio float64
	Width int
	Low   float64
	High  float64
}

// NewMeter creates a meter with the weak-spot bands used across reports:
// below 0.6 is weak, 0.85 and above is solid.
func NewMeter(label string, ratio float64, width int) Meter {
	return Meter{Label: label, Ratio: ratio, Width: width, Low: 0.6, High: 0.85}
}

func (m Meter) fill() lipgloss.Style {
	c := theme.Success
	switch {
	case m.Ratio < m.Low:
		c = theme.Error
	case m.Ratio < m.High:
		c = theme.Warning
	}
	return lipgloss.NewStyle().Background(c)
}

// View renders the label, the bar and the percentage.
func (m Meter) View() string {
	ratio := min(max(m.Ratio, 0), 1)
	var b strings.Builder
	if m.Label != "" {
		b.WriteString(theme.Body.Render(m.Label))
		b.WriteString("  ")
	}
	suffix := fmt.Sprintf("  %3d%%", int(ratio*100+0.5))
	cells := max(m.Width-lipgloss.Width(b.String())-len(suffix), 4)
	filled := int(float64(cells) * ratio)

	b.WriteString(m.fill().Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", cells-filled)))
	b.WriteString(theme.Label.Render(suffix))
	return b.String()
}
