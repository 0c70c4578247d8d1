package core

import "time"

// Message is the domain model for a chat message. Sender and Text come from
// the client verbatim; the store assigns ID and Timestamp.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
