package model

import "time"

type MessageKind string

const (
	MessageKindContact     MessageKind = "contact"
	MessageKindWorkRequest MessageKind = "work_request"
)

// Message is a stored contact-form or work-request submission.
type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"kind"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Company   string      `json:"company,omitempty"`
	Budget    string      `json:"budget,omitempty"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
