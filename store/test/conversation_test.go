package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweax/sweax/store"
)

func TestConversationStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts)

	conversation, err := ts.CreateConversation(ctx, &store.Conversation{
		UID:       "conv-1",
		CreatorID: user.ID,
		Title:     "Sohbet",
		CreatedTs: 1700000000,
		UpdatedTs: 1700000000,
	})
	require.NoError(t, err)
	require.Greater(t, conversation.ID, int32(0))

	found, err := ts.GetConversation(ctx, &store.FindConversation{ID: &conversation.ID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Sohbet", found.Title)
	require.Empty(t, found.LastTopic)

	topic := "İstanbul"
	updatedTs := int64(1700000100)
	updated, err := ts.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversation.ID,
		LastTopic: &topic,
		UpdatedTs: &updatedTs,
	})
	require.NoError(t, err)
	require.Equal(t, "İstanbul", updated.LastTopic)
	require.Equal(t, updatedTs, updated.UpdatedTs)

	// The cached copy reflects the update.
	found, err = ts.GetConversation(ctx, &store.FindConversation{ID: &conversation.ID})
	require.NoError(t, err)
	require.Equal(t, "İstanbul", found.LastTopic)

	missingID := int32(9999)
	missing, err := ts.GetConversation(ctx, &store.FindConversation{ID: &missingID})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMessageStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts)

	conversation, err := ts.CreateConversation(ctx, &store.Conversation{
		UID:       "conv-msg",
		CreatorID: user.ID,
		CreatedTs: 1700000000,
		UpdatedTs: 1700000000,
	})
	require.NoError(t, err)

	contents := []string{"merhaba", "Merhaba! Nasıl yardımcı olabilirim?", "saat kaç"}
	roles := []store.MessageRole{store.MessageRoleUser, store.MessageRoleAssistant, store.MessageRoleUser}
	for i, content := range contents {
		_, err := ts.CreateMessage(ctx, &store.Message{
			UID:            content,
			ConversationID: conversation.ID,
			Role:           roles[i],
			Content:        content,
			CreatedTs:      1700000000 + int64(i),
		})
		require.NoError(t, err)
	}

	recent, err := ts.ListRecentMessages(ctx, conversation.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Chronological order, oldest of the window first.
	require.Equal(t, "Merhaba! Nasıl yardımcı olabilirim?", recent[0].Content)
	require.Equal(t, "saat kaç", recent[1].Content)

	all, err := ts.ListRecentMessages(ctx, conversation.ID, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "merhaba", all[0].Content)

	require.NoError(t, ts.DeleteConversation(ctx, &store.DeleteConversation{ID: conversation.ID}))
	all, err = ts.ListRecentMessages(ctx, conversation.ID, 10)
	require.NoError(t, err)
	require.Empty(t, all)
}
