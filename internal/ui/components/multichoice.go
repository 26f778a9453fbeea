package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Choices renders the options of a multiple-choice item. Once Revealed,
// the correct option and the learner's pick are highlighted.
type Choices struct {
	Options  []item.Option
	Correct  string
	Chosen   string
	Revealed bool
}

// NewChoices creates the option list of an item.
func NewChoices(it item.Item) Choices {
	return Choices{Options: it.Options, Correct: strings.ToLower(it.CorrectOption)}
}

// Reveal marks chosen as the learner's answer.
func (c *Choices) Reveal(chosen string) {
	c.Chosen = strings.ToLower(chosen)
	c.Revealed = true
}

// View renders one line per option.
func (c Choices) View() string {
	var b strings.Builder
	for _, o := range c.Options {
		key := strings.ToLower(o.Key)
		line := fmt.Sprintf("  %s)  %s", strings.ToUpper(o.Key), o.Text)
		switch {
		case !c.Revealed:
			b.WriteString(theme.Body.Render(line))
		case key == c.Correct:
			b.WriteString(theme.Correct.Render(line))
		case key == c.Chosen:
			b.WriteString(theme.Incorrect.Render(line))
		default:
			b.WriteString(theme.Label.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
