package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"PalMessenger/internal/appMiddleware"
	"PalMessenger/internal/models"
	"PalMessenger/internal/pool"
	"PalMessenger/internal/services"
)

type stubChatService struct {
	services.ChatService
	participants    []string
	participantsErr error
}

func (s *stubChatService) Participants(context.Context, int) ([]string, error) {
	return s.participants, s.participantsErr
}

type stubMessageService struct {
	services.MessageService
	msg *models.Message
	err error
}

func (s *stubMessageService) PostMessage(context.Context, int, string, string) (*models.Message, error) {
	return s.msg, s.err
}

func postMessageRequestFor(login string, chatID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chats/"+chatID+"/messages",
		strings.NewReader(`{"text":"hi"}`))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("chat_id", chatID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, appMiddleware.LoginKey, login)
	return req.WithContext(ctx)
}

func TestPostMessageSurvivesPushLookupFailure(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	h := &Handler{
		chats:    &stubChatService{participantsErr: errors.New("store offline")},
		messages: &stubMessageService{msg: &models.Message{ID: 1, ChatID: 1, Author: "alice", Text: "hi"}},
		pool:     pool.New(),
	}

	rec := httptest.NewRecorder()
	h.PostMessage(rec, postMessageRequestFor("alice", "1"))

	// The message is committed; a failed push lookup degrades the
	// websocket push, not the response, and leaves a trace in the log.
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, logs.String(), "participants of chat 1")
}

func TestPostMessagePropagatesServiceError(t *testing.T) {
	h := &Handler{
		chats:    &stubChatService{},
		messages: &stubMessageService{err: models.ErrNotInChat},
		pool:     pool.New(),
	}

	rec := httptest.NewRecorder()
	h.PostMessage(rec, postMessageRequestFor("alice", "1"))

	require.Equal(t, http.StatusForbidden, rec.Code)
}
