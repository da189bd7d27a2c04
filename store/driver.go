package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error

	// Message model related methods.
	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	// ListMessages returns messages ordered newest first. When
	// find.Limit is set, only the most recent N rows are returned.
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)

	// Knowledge model related methods.
	CreateKnowledgeRecord(ctx context.Context, create *KnowledgeRecord) (*KnowledgeRecord, error)
	ListKnowledgeRecords(ctx context.Context, find *FindKnowledgeRecord) ([]*KnowledgeRecord, error)

	// UpsertKnowledgeEmbedding inserts or replaces the embedding vector
	// for a knowledge record.
	UpsertKnowledgeEmbedding(ctx context.Context, upsert *KnowledgeEmbedding) error

	// SearchKnowledgeByVector performs semantic search using vector
	// similarity. Returns records and their similarity scores, most
	// similar first. Drivers without vector support return
	// ErrVectorSearchUnsupported.
	SearchKnowledgeByVector(ctx context.Context, embedding []float32, limit int) ([]*KnowledgeRecord, []float32, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
}
