package models

import "time"

// Conversation is one persisted requirement-refinement exchange.
type Conversation struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	UserMessage string    `json:"userMessage"`
	AIResponse  string    `json:"aiResponse"`
	Timestamp   time.Time `json:"timestamp"`
}

// TurnReply is the backend answer to a submitted conversation message.
type TurnReply struct {
	Response string `json:"response"`
}
