package tui

import (
	"fmt"
	"strings"
)

// State tracks collected answers in prompt order together with the
// server-provided errors for each field.
type State struct {
	order  []string
	values map[string]string
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	s := &State{
		values: make(map[string]string, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	for key, value := range prefill {
		if value == nil {
			continue
		}
		s.values[key] = fmt.Sprint(value)
	}
	for key, messages := range errs {
		s.errors[key] = append([]string(nil), messages...)
	}
	return s
}

// Value returns the answer recorded for name.
func (s *State) Value(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	value, ok := s.values[name]
	return value, ok
}

// Set records the answer for name and clears its errors.
func (s *State) Set(name, value string) {
	if !contains(s.order, name) {
		s.order = append(s.order, name)
	}
	s.values[name] = strings.TrimSpace(value)
	delete(s.errors, name)
}

// ErrorsFor returns the errors attached to name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// Answers returns a copy of the values set during the session.
func (s *State) Answers() map[string]string {
	out := make(map[string]string, len(s.order))
	for _, name := range s.order {
		out[name] = s.values[name]
	}
	return out
}

// Order returns the field names in the order they were answered.
func (s *State) Order() []string {
	return append([]string(nil), s.order...)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
