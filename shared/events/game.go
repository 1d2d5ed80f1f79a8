package events

import "time"

// Notification is the payload pushed to presentation clients over the session event stream.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Kind      string    `json:"kind"`
	Level     int       `json:"level,omitempty"`
	Coins     int       `json:"coins,omitempty"`
	Sound     string    `json:"sound,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}
