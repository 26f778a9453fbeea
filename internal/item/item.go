package item

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Format distinguishes regular questions from quick short-form prompts.
type Format string

const (
	FormatStandard  Format = "standard"
	FormatShortForm Format = "short_form"
)

// ParseFormat maps a stored string to a Format, defaulting to standard.
func ParseFormat(s string) Format {
	if Format(s) == FormatShortForm {
		return FormatShortForm
	}
	return FormatStandard
}

// Confidence is the learner's self-rating submitted with an answer.
type Confidence string

const (
	ConfidenceNone     Confidence = ""
	ConfidenceGuessed  Confidence = "guessed"
	ConfidenceSomewhat Confidence = "somewhat_sure"
	ConfidenceCertain  Confidence = "certain"
)

// ParseConfidence accepts the canonical values plus a few short aliases.
// Unknown values map to ConfidenceNone.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guessed", "guess", "1":
		return ConfidenceGuessed
	case "somewhat_sure", "somewhat", "unsure", "2":
		return ConfidenceSomewhat
	case "certain", "sure", "3":
		return ConfidenceCertain
	default:
		return ConfidenceNone
	}
}

// Option is one answer choice of a multiple-choice item.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Item is a single practice question together with the learner's
// aggregate history and scheduling state.
type Item struct {
	ID            string   `json:"id"`
	Topic         string   `json:"topic"`
	Subtopic      string   `json:"subtopic,omitempty"`
	Format        Format   `json:"format"`
	Question      string   `json:"question"`
	Options       []Option `json:"options,omitempty"`
	CorrectOption string   `json:"correct_option,omitempty"`
	Flashcard     bool     `json:"flashcard,omitempty"`

	TimesAttempted  int        `json:"times_attempted"`
	CorrectAttempts int        `json:"correct_attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`

	State State `json:"state"`
}

// Attempted reports whether the learner has ever answered the item.
func (it *Item) Attempted() bool {
	return it.TimesAttempted > 0
}

// Accuracy returns the historical fraction of correct attempts, or 0 when
// the item has never been attempted.
func (it *Item) Accuracy() float64 {
	if it.TimesAttempted <= 0 {
		return 0
	}
	correct := min(max(it.CorrectAttempts, 0), it.TimesAttempted)
	return float64(correct) / float64(it.TimesAttempted)
}

// ContentLength counts the characters a learner has to read: the question
// plus every option text.
func (it *Item) ContentLength() int {
	n := utf8.RuneCountInString(it.Question)
	for _, o := range it.Options {
		n += utf8.RuneCountInString(o.Text)
	}
	return n
}

// IsShortForm reports whether the item uses the short-form format.
func (it *Item) IsShortForm() bool {
	return it.Format == FormatShortForm
}

// LastSeen returns the most recent review or attempt time, whichever is set.
func (it *Item) LastSeen() (time.Time, bool) {
	if it.State.LastReviewedAt != nil {
		return *it.State.LastReviewedAt, true
	}
	if it.LastAttemptedAt != nil {
		return *it.LastAttemptedAt, true
	}
	return time.Time{}, false
}

// Clone returns a deep copy so callers can mutate without touching store data.
func (it Item) Clone() Item {
	c := it
	if it.Options != nil {
		c.Options = append([]Option(nil), it.Options...)
	}
	c.LastAttemptedAt = cloneTime(it.LastAttemptedAt)
	c.State = it.State.clone()
	return c
}

// Topics returns the distinct topics of the given items in first-seen order.
func Topics(items []Item) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, it := range items {
		if seen[it.Topic] {
			continue
		}
		seen[it.Topic] = true
		topics = append(topics, it.Topic)
	}
	return topics
}

// FilterTopic returns the items belonging to topic. An empty topic returns
// the input unchanged.
func FilterTopic(items []Item, topic string) []Item {
	if topic == "" {
		return items
	}
	var out []Item
	for _, it := range items {
		if it.Topic == topic {
			out = append(out, it)
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
