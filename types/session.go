package types

import "time"

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
