package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	userCache         *cache.Cache // cache for users
	conversationCache *cache.Cache // cache for conversations
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:            driver,
		profile:           profile,
		userCache:         cache.New(cacheConfig),
		conversationCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userCache.Close()
	s.conversationCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	conversation, err := s.driver.CreateConversation(ctx, create)
	if err != nil {
		return nil, err
	}
	s.conversationCache.Set(conversationCacheKey(conversation.ID), conversation)
	return conversation, nil
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns a single conversation or nil when none matches.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	if find.ID != nil && find.UID == nil && find.CreatorID == nil && find.Archived == nil {
		if v, ok := s.conversationCache.Get(conversationCacheKey(*find.ID)); ok {
			if conversation, ok := v.(*Conversation); ok {
				return conversation, nil
			}
		}
	}

	list, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	conversation := list[0]
	s.conversationCache.Set(conversationCacheKey(conversation.ID), conversation)
	return conversation, nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	conversation, err := s.driver.UpdateConversation(ctx, update)
	if err != nil {
		return nil, err
	}
	s.conversationCache.Set(conversationCacheKey(conversation.ID), conversation)
	return conversation, nil
}

func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	if err := s.driver.DeleteConversation(ctx, delete); err != nil {
		return err
	}
	s.conversationCache.Delete(conversationCacheKey(delete.ID))
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, create *Message) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

// ListRecentMessages returns the last limit messages of a conversation
// in chronological order.
func (s *Store) ListRecentMessages(ctx context.Context, conversationID int32, limit int) ([]*Message, error) {
	list, err := s.driver.ListMessages(ctx, &FindMessage{
		ConversationID: &conversationID,
		Limit:          &limit,
	})
	if err != nil {
		return nil, err
	}
	// Drivers return newest first.
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (s *Store) CreateKnowledgeRecord(ctx context.Context, create *KnowledgeRecord) (*KnowledgeRecord, error) {
	return s.driver.CreateKnowledgeRecord(ctx, create)
}

func (s *Store) ListKnowledgeRecords(ctx context.Context, find *FindKnowledgeRecord) ([]*KnowledgeRecord, error) {
	return s.driver.ListKnowledgeRecords(ctx, find)
}

func (s *Store) UpsertKnowledgeEmbedding(ctx context.Context, upsert *KnowledgeEmbedding) error {
	return s.driver.UpsertKnowledgeEmbedding(ctx, upsert)
}

func (s *Store) SearchKnowledgeByVector(ctx context.Context, embedding []float32, limit int) ([]*KnowledgeRecord, []float32, error) {
	return s.driver.SearchKnowledgeByVector(ctx, embedding, limit)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns a single user or nil when none matches.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Username == nil {
		if v, ok := s.userCache.Get(userCacheKey(*find.ID)); ok {
			if user, ok := v.(*User); ok {
				return user, nil
			}
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	user := list[0]
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}

func conversationCacheKey(id int32) string {
	return fmt.Sprintf("conversation:%d", id)
}
