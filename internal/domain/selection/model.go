// internal/domain/selection/model.go

package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventKind identifies a user interaction
type EventKind string

const (
	EventToggleRegion EventKind = "toggle_region"
	EventToggleAt     EventKind = "toggle_at"
	EventSetRegions   EventKind = "set_regions"
	EventSelectPoints EventKind = "select_points"
	EventSetYear      EventKind = "set_year"
	EventSetVariable  EventKind = "set_variable"
)

// Common errors
var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrBadPayload   = errors.New("malformed event payload")
)

// Point is a map coordinate in WGS84
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Event is a single user interaction. HasPayload is false when the UI fired
// the event without a value, e.g. on initial page load.
type Event struct {
	Kind       EventKind
	HasPayload bool
	Region     string
	Regions    []string
	Point      Point
	Year       int
	Variable   string
}

// State is the selection of one browser session
type State struct {
	Selected []string `json:"selected"`
	Year     int      `json:"year"`
	Variable string   `json:"variable"`
}

// Contains reports whether id is selected
func (s *State) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *State) indexOf(id string) int {
	for i, sel := range s.Selected {
		if sel == id {
			return i
		}
	}
	return -1
}

// Remove drops id from the selection and reports whether it was present
func (s *State) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
	return true
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	c := s
	c.Selected = append([]string(nil), s.Selected...)
	return c
}

// Outcome describes what an event did to a state
type Outcome struct {
	Skipped bool     `json:"skipped"`
	Changed bool     `json:"changed"`
	Dropped []string `json:"dropped,omitempty"`
}

type wireEvent struct {
	Type  EventKind       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ParseEvent decodes an event of the form {"type": ..., "value": ...}.
// A missing or null value yields an event without payload.
func ParseEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	ev := Event{Kind: w.Type}
	if len(w.Value) == 0 || string(w.Value) == "null" {
		switch w.Type {
		case EventToggleRegion, EventToggleAt, EventSetRegions, EventSelectPoints, EventSetYear, EventSetVariable:
			return ev, nil
		default:
			return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
		}
	}

	var err error
	switch w.Type {
	case EventToggleRegion:
		err = json.Unmarshal(w.Value, &ev.Region)
		ev.Region = strings.TrimSpace(ev.Region)
		ev.HasPayload = ev.Region != ""
	case EventToggleAt:
		err = json.Unmarshal(w.Value, &ev.Point)
		ev.HasPayload = err == nil
	case EventSetRegions, EventSelectPoints:
		err = json.Unmarshal(w.Value, &ev.Regions)
		ev.HasPayload = err == nil
	case EventSetYear:
		err = json.Unmarshal(w.Value, &ev.Year)
		ev.HasPayload = err == nil
	case EventSetVariable:
		err = json.Unmarshal(w.Value, &ev.Variable)
		ev.HasPayload = ev.Variable != ""
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
	}
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return ev, nil
}
