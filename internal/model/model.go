package model

// Package model contains domain models/data structures.
// No business logic here.

// ChatTurn is one entry in a user's conversation history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
