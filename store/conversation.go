package store

type Conversation struct {
	ID        int32
	UID       string
	CreatorID int32
	Title     string
	LastTopic string
	Archived  bool
	CreatedTs int64
	UpdatedTs int64
}

type FindConversation struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	Archived  *bool
}

type UpdateConversation struct {
	ID        int32
	Title     *string
	LastTopic *string
	Archived  *bool
	UpdatedTs *int64
}

type DeleteConversation struct {
	ID int32
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "USER"
	MessageRoleAssistant MessageRole = "ASSISTANT"
	MessageRoleSystem    MessageRole = "SYSTEM"
)

type Message struct {
	ID             int32
	UID            string
	ConversationID int32
	Role           MessageRole
	Content        string
	CreatedTs      int64
}

type FindMessage struct {
	ID             *int32
	ConversationID *int32
	// Limit caps the result set to the most recent N messages.
	Limit *int
}
