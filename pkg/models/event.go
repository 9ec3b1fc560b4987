package models

// Event is a single upstream object (DONKI event, NEO, APOD entry)
// kept as decoded JSON. Upstream payloads are passed through to API
// consumers unchanged, so fields are looked up dynamically instead of
// being bound to a struct.
type Event map[string]any

// String returns the named field as a string, or "" when the field is
// missing or not a string.
func (e Event) String(field string) string {
	s, _ := e[field].(string)
	return s
}

// Number returns the named field as a float64 plus whether it was a
// JSON number.
func (e Event) Number(field string) (float64, bool) {
	n, ok := e[field].(float64)
	return n, ok
}

// List returns the named field as a slice of events. Non-object
// elements are skipped.
func (e Event) List(field string) []Event {
	raw, ok := e[field].([]any)
	if !ok {
		return nil
	}
	out := make([]Event, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Event(m))
		}
	}
	return out
}
