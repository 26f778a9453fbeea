// Package drill runs a practice session interactively in the terminal.
package drill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
)

// ErrEmptySession is returned by Run for a session without items.
var ErrEmptySession = errors.New("session has no items")

// Recorder records answers. *practice.Service implements it.
type Recorder interface {
	RecordAttempt(ctx context.Context, in practice.AttemptInput) (practice.AttemptResult, error)
	RecordFlashcard(ctx context.Context, in practice.FlashcardInput) (practice.AttemptResult, error)
}

type phase int

const (
	phaseAnswer     phase = iota // typing an option key, or y/n for self-graded items
	phaseConfidence              // rating 1-3, enter to skip
	phaseReveal                  // flashcard front
	phaseRecall                  // flashcard back, y/n
	phaseRecording
	phaseFeedback
	phaseDone
)

type recordedMsg struct {
	res practice.AttemptResult
	err error
}

// Summary is the outcome of a drill.
type Summary struct {
	Answered            int
	Correct             int
	Failed              int // answers that could not be recorded
	QueuedPrerequisites []string
}

// Model is the bubbletea model of a drill.
type Model struct {
	ctx  context.Context
	rec  Recorder
	sess practice.Session
	now  func() time.Time

	idx     int
	phase   phase
	input   components.KeyInput
	choices components.Choices
	shownAt time.Time
	elapsed time.Duration
	answer  string
	correct bool
	notice  string

	last    *practice.AttemptResult
	lastErr error
	summary Summary

	width  int
	height int
}

// New creates a drill over the items of sess. A nil clock uses time.Now.
func New(ctx context.Context, rec Recorder, sess practice.Session, clock func() time.Time) Model {
	if clock == nil {
		clock = time.Now
	}
	m := Model{ctx: ctx, rec: rec, sess: sess, now: clock}
	if len(sess.Items) == 0 {
		m.phase = phaseDone
		return m
	}
	m.show(0)
	return m
}

// Summary returns the results so far.
func (m Model) Summary() Summary {
	return m.summary
}

func (m Model) Init() tea.Cmd {
	if m.phase == phaseAnswer {
		return m.input.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case recordedMsg:
		m.phase = phaseFeedback
		if msg.err != nil {
			m.lastErr = msg.err
			m.last = nil
			m.summary.Failed++
			return m, nil
		}
		m.lastErr = nil
		m.last = &msg.res
		m.summary.Answered++
		if msg.res.Correct {
			m.summary.Correct++
		}
		m.summary.QueuedPrerequisites = appendUnique(m.summary.QueuedPrerequisites, msg.res.QueuedPrerequisites...)
		m.choices.Reveal(m.answer)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.phase == phaseAnswer {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := strings.ToLower(msg.String())
	it := m.current()

	switch m.phase {
	case phaseAnswer:
		if len(it.Options) == 0 {
			switch key {
			case "y", "n":
				m.correct = key == "y"
				m.elapsed = m.now().Sub(m.shownAt)
				m.phase = phaseConfidence
			}
			return m, nil
		}
		if key != "enter" {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.notice = ""
			return m, cmd
		}
		if !m.input.Valid() {
			m.notice = "Choose one of " + optionKeys(it)
			return m, nil
		}
		m.answer = m.input.Value()
		m.elapsed = m.now().Sub(m.shownAt)
		m.phase = phaseConfidence
		return m, nil

	case phaseConfidence:
		var conf item.Confidence
		switch key {
		case "1":
			conf = item.ConfidenceGuessed
		case "2":
			conf = item.ConfidenceSomewhat
		case "3":
			conf = item.ConfidenceCertain
		case "enter":
		default:
			return m, nil
		}
		m.phase = phaseRecording
		return m, m.recordAttempt(practice.AttemptInput{
			ItemID:            it.ID,
			SessionID:         m.sess.ID,
			Correct:           m.correct,
			ResponseTimeMs:    m.elapsed.Milliseconds(),
			SelectedOptionKey: m.answer,
			Confidence:        conf,
		})

	case phaseReveal:
		if key == "enter" || key == "space" || key == " " {
			m.phase = phaseRecall
		}
		return m, nil

	case phaseRecall:
		if key != "y" && key != "n" {
			return m, nil
		}
		m.phase = phaseRecording
		return m, m.recordFlashcard(practice.FlashcardInput{
			ItemID:     it.ID,
			SessionID:  m.sess.ID,
			Remembered: key == "y",
			ViewTimeMs: m.now().Sub(m.shownAt).Milliseconds(),
		})

	case phaseFeedback:
		if key == "enter" || key == "space" || key == " " {
			if m.idx+1 >= len(m.sess.Items) {
				m.phase = phaseDone
				return m, nil
			}
			m.show(m.idx + 1)
			return m, m.input.Init()
		}
		return m, nil

	case phaseDone:
		if key == "enter" || key == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) recordAttempt(in practice.AttemptInput) tea.Cmd {
	ctx, rec := m.ctx, m.rec
	return func() tea.Msg {
		res, err := rec.RecordAttempt(ctx, in)
		return recordedMsg{res: res, err: err}
	}
}

func (m Model) recordFlashcard(in practice.FlashcardInput) tea.Cmd {
	ctx, rec := m.ctx, m.rec
	return func() tea.Msg {
		res, err := rec.RecordFlashcard(ctx, in)
		return recordedMsg{res: res, err: err}
	}
}

// show resets the per-item state for item i.
func (m *Model) show(i int) {
	it := m.sess.Items[i]
	m.idx = i
	m.answer = ""
	m.correct = false
	m.elapsed = 0
	m.notice = ""
	m.last = nil
	m.lastErr = nil
	m.choices = components.NewChoices(it)
	m.input = components.NewKeyInput("option", keysOf(it))
	m.shownAt = m.now()
	if it.Flashcard {
		m.phase = phaseReveal
	} else {
		m.phase = phaseAnswer
	}
}

func (m Model) current() item.Item {
	return m.sess.Items[m.idx]
}

func (m Model) category() session.Category {
	return m.sess.Categories[m.current().ID]
}

// Run drives a drill to completion and returns its summary.
func Run(ctx context.Context, rec Recorder, sess practice.Session, opts ...tea.ProgramOption) (Summary, error) {
	if len(sess.Items) == 0 {
		return Summary{}, ErrEmptySession
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(ctx, rec, sess, nil), opts...).Run()
	if err != nil {
		return Summary{}, fmt.Errorf("run drill: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Summary(), nil
	}
	return Summary{}, nil
}

func keysOf(it item.Item) []string {
	keys := make([]string, len(it.Options))
	for i, o := range it.Options {
		keys[i] = o.Key
	}
	return keys
}

func optionKeys(it item.Item) string {
	return strings.ToUpper(strings.Join(keysOf(it), ", "))
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
