package domain

import "time"

// MaxConversationTurns bounds the per-user history kept by session stores.
const MaxConversationTurns = 10

type ConversationTurn struct {
	UserID    string    `json:"user_id"`
	Question  string    `json:"user"`
	Answer    string    `json:"assistant"`
	CreatedAt time.Time `json:"timestamp"`
}

type ReplyType string

const (
	ReplyGreeting ReplyType = "greeting"
	ReplyGoodbye  ReplyType = "goodbye"
	ReplyRAG      ReplyType = "rag_response"
	ReplyMixed    ReplyType = "mixed_response"
)

// ChatReply is an Answer annotated with how the chat layer produced it.
type ChatReply struct {
	Answer
	Type ReplyType `json:"type"`
}

// QuestionRecord is the analytics row stored for each answered question.
type QuestionRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	SourceFile string    `json:"source_file,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Confidence float64   `json:"confidence"`
	Outcome    Outcome   `json:"outcome"`
	CreatedAt  time.Time `json:"created_at"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type SourceCount struct {
	SourceFile string `json:"source_file"`
	Count      int    `json:"count"`
}
