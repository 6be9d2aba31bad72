package reconcile

import "context"

// Dismissed is the choice value when the user closed a prompt without
// selecting any option.
const Dismissed = -1

// Prompt asks the user to pick one of an ordered list of options.
// Exactly one option's action executes when the user responds; a
// dismissal returns Dismissed and nothing executes.
type Prompt interface {
	Confirm(ctx context.Context, message string, options []string) (int, error)
}

// MockPrompt is a test Prompt returning a scripted sequence of choices
// and recording every call.
type MockPrompt struct {
	Choices []int
	Err     error
	Calls   []MockPromptCall
}

// MockPromptCall is one recorded Confirm invocation.
type MockPromptCall struct {
	Message string
	Options []string
}

func (m *MockPrompt) Confirm(_ context.Context, message string, options []string) (int, error) {
	m.Calls = append(m.Calls, MockPromptCall{Message: message, Options: options})
	if m.Err != nil {
		return Dismissed, m.Err
	}
	if len(m.Choices) == 0 {
		return Dismissed, nil
	}
	choice := m.Choices[0]
	m.Choices = m.Choices[1:]
	return choice, nil
}
