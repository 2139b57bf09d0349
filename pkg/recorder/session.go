package recorder

import (
	"encoding/json"
	"time"
)

// Step is one recorded action.
type Step struct {
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"componentName"`
	Action    string    `json:"action"`
	Args      []any     `json:"args"`
}

// ComponentState holds the JSON snapshots of one recorded component.
type ComponentState struct {
	Name         string          `json:"componentName"`
	InitialState json.RawMessage `json:"initialState,omitempty"`
	CurrentState json.RawMessage `json:"currentState,omitempty"`
}

// Session is the recorder's model and the document written by save.
type Session struct {
	Name                string                     `json:"sessionName"`
	Recording           bool                       `json:"recording"`
	Steps               []Step                     `json:"steps"`
	Components          map[string]*ComponentState `json:"components"`
	ConfirmationMessage string                     `json:"confirmationMessage"`
	RecordingID         string                     `json:"recordingId"`
}

// Decode parses a saved recording.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Components == nil {
		s.Components = make(map[string]*ComponentState)
	}
	return &s, nil
}

func (s *Session) component(name string) *ComponentState {
	if s.Components == nil {
		s.Components = make(map[string]*ComponentState)
	}
	st, ok := s.Components[name]
	if !ok {
		st = &ComponentState{Name: name}
		s.Components[name] = st
	}
	return st
}
