package events

import "encoding/json"

// Event name constants
const (
	AlertShown     = "alert.shown"
	AlertHidden    = "alert.hidden"
	AlertDismissed = "alert.dismissed"
	ActionLaunched = "action.launched"
	ActionFailed   = "action.failed"
)

// Event is a generic SSE event from daemon.
type Event struct {
	ID   string          // SSE event id
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// AlertEvent is the payload of the alert.* events.
type AlertEvent struct {
	Percentage  int    `json:"percentage"`
	Charging    bool   `json:"charging"`
	Suppression string `json:"suppression"`
	Secondary   bool   `json:"secondaryActionEnabled"`
	Ts          int64  `json:"ts"`
}

// ActionEvent is the payload of the action.* events.
type ActionEvent struct {
	Command string `json:"command"`
	Error   string `json:"error,omitempty"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.AlertEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Percentage, payload.Suppression)
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
