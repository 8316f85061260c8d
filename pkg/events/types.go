package events

import "encoding/json"

// Event name constants
const (
	PowerStatus = "power.status"
	PowerError  = "power.error"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// PowerErrorEvent is the typed payload for power.error. Snapshots in
// power.status are plain powerstate.Status values.
type PowerErrorEvent struct {
	Error string `json:"error"`
	Ts    int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	status, err := events.DecodeAs[powerstate.Status](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(status.PowerState)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
