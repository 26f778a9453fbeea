// Package components holds reusable drill widgets.
package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// KeyInput is a one-line input that only accepts the given option keys.
// With no keys it accepts any text.
type KeyInput struct {
	Model textinput.Model
	keys  map[string]bool
}

// NewKeyInput creates a focused input for the given option keys.
func NewKeyInput(placeholder string, keys []string) KeyInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Focus()

	allowed := make(map[string]bool, len(keys))
	longest := 0
	for _, k := range keys {
		allowed[strings.ToLower(k)] = true
		longest = max(longest, len(k))
	}
	if longest > 0 {
		ti.CharLimit = longest
	}
	return KeyInput{Model: ti, keys: allowed}
}

// Init returns the cursor blink command.
func (k KeyInput) Init() tea.Cmd {
	return k.Model.Focus()
}

// Update forwards key presses to the text input.
func (k KeyInput) Update(msg tea.Msg) (KeyInput, tea.Cmd) {
	var cmd tea.Cmd
	k.Model, cmd = k.Model.Update(msg)
	return k, cmd
}

// View renders the input.
func (k KeyInput) View() string {
	return k.Model.View()
}

// Value returns the trimmed, lower-cased input.
func (k KeyInput) Value() string {
	return strings.ToLower(strings.TrimSpace(k.Model.Value()))
}

// Valid reports whether the current value is an accepted key.
func (k KeyInput) Valid() bool {
	v := k.Value()
	if v == "" {
		return false
	}
	return len(k.keys) == 0 || k.keys[v]
}

// Reset clears the input.
func (k *KeyInput) Reset() {
	k.Model.Reset()
}
