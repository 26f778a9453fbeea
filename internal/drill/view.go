package drill

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		v.SetContent(m.body())
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	status := ""
	if len(m.sess.Items) > 0 {
		status = fmt.Sprintf("%d/%d  ✓ %d ", min(m.idx+1, len(m.sess.Items)), len(m.sess.Items), m.summary.Correct)
	}
	header := layout.RenderHeader("Practice", status, m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	v.SetContent(layout.RenderFrame(header, m.body(), footer, m.width, m.height))
	return v
}

// body renders the screen content without the frame.
func (m Model) body() string {
	if m.phase == phaseDone {
		return m.summaryView()
	}

	it := m.current()
	var b strings.Builder

	if cat := m.category(); cat != "" {
		b.WriteString(theme.Badge(strings.ReplaceAll(string(cat), "_", " "), theme.CategoryColor(string(cat))))
		b.WriteString("  ")
	}
	b.WriteString(theme.Label.Render(it.Topic))
	if it.Subtopic != "" {
		b.WriteString(theme.Label.Render(" / " + it.Subtopic))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Bold(true).Render(it.Question))
	b.WriteString("\n\n")

	if it.Flashcard {
		if m.phase != phaseReveal {
			b.WriteString(theme.Card.Render(m.flashcardBack()))
			b.WriteString("\n")
		}
	} else if len(it.Options) > 0 {
		b.WriteString(m.choices.View())
		b.WriteString("\n")
	}

	switch m.phase {
	case phaseAnswer:
		if len(it.Options) > 0 {
			b.WriteString(m.input.View())
		} else {
			b.WriteString(theme.Hint.Render("Did you know it? (y/n)"))
		}
		if m.notice != "" {
			b.WriteString("\n" + theme.Incorrect.Render(m.notice))
		}
	case phaseConfidence:
		b.WriteString(theme.Hint.Render("How sure were you?  1 guessed   2 somewhat sure   3 certain   enter skip"))
	case phaseReveal:
		b.WriteString(theme.Hint.Render("Recall the answer, then press space to reveal"))
	case phaseRecall:
		b.WriteString(theme.Hint.Render("Did you remember it? (y/n)"))
	case phaseRecording:
		b.WriteString(theme.Hint.Render("Saving..."))
	case phaseFeedback:
		b.WriteString(m.feedbackView())
	}
	return b.String()
}

func (m Model) flashcardBack() string {
	it := m.current()
	for _, o := range it.Options {
		if strings.EqualFold(o.Key, it.CorrectOption) {
			return o.Text
		}
	}
	if it.CorrectOption != "" {
		return it.CorrectOption
	}
	return "(no answer on file)"
}

func (m Model) feedbackView() string {
	if m.lastErr != nil {
		return theme.Incorrect.Render("Could not save answer: " + m.lastErr.Error())
	}
	if m.last == nil {
		return ""
	}
	var b strings.Builder
	if m.last.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite."))
	}
	b.WriteString("  " + theme.Body.Render(m.last.Message))
	b.WriteString("\n")
	b.WriteString(theme.Label.Render(fmt.Sprintf("Memory strength %.1f/10, next review %s",
		m.last.Memory.MemoryStrength, m.last.Schedule.NextReviewAt.Format("Mon Jan 2"))))
	if len(m.last.QueuedPrerequisites) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Warn.Render("Queued prerequisites: " + strings.Join(m.last.QueuedPrerequisites, ", ")))
	}
	return b.String()
}

func (m Model) summaryView() string {
	s := m.summary
	var b strings.Builder
	b.WriteString(theme.Title.Render("Session complete"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d, correct %d", s.Answered, s.Correct)))
	b.WriteString("\n")
	if s.Answered > 0 {
		bar := components.NewMeter("Accuracy", float64(s.Correct)/float64(s.Answered), 40)
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	if s.Failed > 0 {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("%d answers could not be saved", s.Failed)))
		b.WriteString("\n")
	}
	if len(s.QueuedPrerequisites) > 0 {
		b.WriteString(theme.Warn.Render("Review next: " + strings.Join(s.QueuedPrerequisites, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n" + theme.Hint.Render("Press enter to exit"))
	return b.String()
}

func (m Model) hints() []layout.KeyHint {
	switch m.phase {
	case phaseAnswer:
		return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Quit"}}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "Space", Description: "Next"}, {Key: "Esc", Description: "Quit"}}
	case phaseDone:
		return []layout.KeyHint{{Key: "Enter", Description: "Exit"}}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
	}
}
