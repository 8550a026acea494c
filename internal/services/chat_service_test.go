package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"PalMessenger/internal/models"
)

func TestCreateChat(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	require.Equal(t, "alice", chat.InitialSender)

	members, err := e.chats.Participants(ctx, chat.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob", "carol"}, members)
}

func TestCreateChatValidation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")

	_, err := e.chats.CreateChat(ctx, "alice", nil)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = e.chats.CreateChat(ctx, "alice", []string{"bob", "bob"})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = e.chats.CreateChat(ctx, "alice", []string{"alice"})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateChatUnknownMember(t *testing.T) {
	e := newEnv()
	e.addUser("alice")

	_, err := e.chats.CreateChat(context.Background(), "alice", []string{"ghost"})
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestCreateChatBlockedParticipant(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	// bob blocks alice; the veto works in both directions.
	require.NoError(t, e.relationships.AddBlock(ctx, "bob", "alice", false))
	_, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.ErrorIs(t, err, models.ErrBlockedParticipant)

	require.NoError(t, e.relationships.AddBlock(ctx, "alice", "carol", false))
	_, err = e.chats.CreateChat(ctx, "alice", []string{"carol"})
	require.ErrorIs(t, err, models.ErrBlockedParticipant)
}

func TestAddMemberOwnerOnly(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)

	err = e.chats.AddMember(ctx, chat.ID, "bob", "carol")
	require.ErrorIs(t, err, models.ErrOwnerOnly)

	require.NoError(t, e.chats.AddMember(ctx, chat.ID, "alice", "carol"))

	err = e.chats.AddMember(ctx, chat.ID, "alice", "carol")
	require.ErrorIs(t, err, models.ErrDuplicateMembership)
}

func TestAddMemberUnknownChat(t *testing.T) {
	e := newEnv()
	e.addUser("alice")
	e.addUser("bob")

	err := e.chats.AddMember(context.Background(), 42, "alice", "bob")
	require.ErrorIs(t, err, models.ErrChatNotFound)
}

func TestAddMemberBlocked(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)

	require.NoError(t, e.relationships.AddBlock(ctx, "carol", "alice", false))
	err = e.chats.AddMember(ctx, chat.ID, "alice", "carol")
	require.ErrorIs(t, err, models.ErrBlockedParticipant)
}

func TestRemoveMember(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob", "carol"})
	require.NoError(t, err)

	err = e.chats.RemoveMember(ctx, chat.ID, "bob", "carol")
	require.ErrorIs(t, err, models.ErrOwnerOnly)

	require.NoError(t, e.chats.RemoveMember(ctx, chat.ID, "alice", "carol"))

	err = e.chats.RemoveMember(ctx, chat.ID, "alice", "carol")
	require.ErrorIs(t, err, models.ErrNotInChat)

	err = e.chats.RemoveMember(ctx, chat.ID, "alice", "alice")
	require.ErrorIs(t, err, models.ErrCannotRemoveOwner)
}

func TestDeleteChatOwnerOnly(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)

	err = e.chats.DeleteChat(ctx, chat.ID, "bob")
	require.ErrorIs(t, err, models.ErrOwnerOnly)
}

func TestDeleteChatCascades(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")
	e.addUser("carol")

	chat, err := e.chats.CreateChat(ctx, "alice", []string{"bob", "carol"})
	require.NoError(t, err)

	_, err = e.messages.PostMessage(ctx, chat.ID, "alice", "hello")
	require.NoError(t, err)
	_, err = e.messages.PostMessage(ctx, chat.ID, "bob", "hi")
	require.NoError(t, err)

	require.NoError(t, e.chats.DeleteChat(ctx, chat.ID, "alice"))

	require.Empty(t, e.store.messages)
	require.NotContains(t, e.store.chats, chat.ID)
	require.NotContains(t, e.store.chatMembers, chat.ID)
	for recipient, pending := range e.store.notifications {
		require.Empty(t, pending, "notifications left for %s", recipient)
	}

	// The deleted chat no longer accepts messages.
	_, err = e.messages.PostMessage(ctx, chat.ID, "alice", "anyone?")
	require.ErrorIs(t, err, models.ErrNotInChat)
}

func TestListChatsForOrdering(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addUser("alice")
	e.addUser("bob")

	first, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)
	second, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)
	empty, err := e.chats.CreateChat(ctx, "alice", []string{"bob"})
	require.NoError(t, err)

	_, err = e.messages.PostMessage(ctx, first.ID, "alice", "older")
	require.NoError(t, err)
	_, err = e.messages.PostMessage(ctx, second.ID, "alice", "newer")
	require.NoError(t, err)

	chats, err := e.chats.ListChatsFor(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, chats, 3)
	require.Equal(t, second.ID, chats[0].ID)
	require.Equal(t, first.ID, chats[1].ID)
	require.Equal(t, empty.ID, chats[2].ID)
	require.Nil(t, chats[2].LastMessageAt)
}
