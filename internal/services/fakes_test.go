package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"PalMessenger/internal/models"
)

// In-memory stand-ins for the Postgres repositories. They mirror the
// uniqueness constraints and row-count semantics of the real schema so
// the services can be exercised without a database.

type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	lists       map[int]map[string]struct{}
	listSeq     int
	chats       map[int]*models.Chat
	chatMembers map[int]map[string]struct{}
	chatSeq     int
	messages    map[int]*models.Message
	msgSeq      int
	// recipient -> set of message ids
	notifications map[string]map[int]struct{}
	clock         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*models.User),
		lists:         make(map[int]map[string]struct{}),
		chats:         make(map[int]*models.Chat),
		chatMembers:   make(map[int]map[string]struct{}),
		messages:      make(map[int]*models.Message),
		notifications: make(map[string]map[int]struct{}),
		clock:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) newList() int {
	s.listSeq++
	s.lists[s.listSeq] = make(map[string]struct{})
	return s.listSeq
}

type fakeTxManager struct{}

func (fakeTxManager) ReadCommitted(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, login, passwordHash, phone string) (*models.User, error) {
	if _, ok := r.s.users[login]; ok {
		return nil, models.ErrLoginTaken
	}
	user := &models.User{
		ID:            len(r.s.users) + 1,
		Login:         login,
		PasswordHash:  passwordHash,
		Phone:         phone,
		ContactListID: r.s.newList(),
		BlockListID:   r.s.newList(),
		CreatedAt:     r.s.tick(),
	}
	r.s.users[login] = user
	return user, nil
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	user, ok := r.s.users[login]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, login string) (bool, error) {
	_, ok := r.s.users[login]
	return ok, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, login string, status *string) error {
	user, ok := r.s.users[login]
	if !ok {
		return models.ErrUserNotFound
	}
	user.Status = status
	return nil
}

type fakeRelationRepo struct{ s *memStore }

func (r *fakeRelationRepo) IsMember(_ context.Context, listID int, login string) (bool, error) {
	_, ok := r.s.lists[listID][login]
	return ok, nil
}

func (r *fakeRelationRepo) Add(_ context.Context, listID int, login string) error {
	if _, ok := r.s.lists[listID][login]; ok {
		return models.ErrAlreadyRelated
	}
	r.s.lists[listID][login] = struct{}{}
	return nil
}

func (r *fakeRelationRepo) Remove(_ context.Context, listID int, login string) (bool, error) {
	if _, ok := r.s.lists[listID][login]; !ok {
		return false, nil
	}
	delete(r.s.lists[listID], login)
	return true, nil
}

func (r *fakeRelationRepo) ListMembers(_ context.Context, listID int) ([]models.RelationRow, error) {
	var rows []models.RelationRow
	for login := range r.s.lists[listID] {
		row := models.RelationRow{Login: login}
		if user, ok := r.s.users[login]; ok {
			row.Status = user.Status
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Login < rows[j].Login })
	return rows, nil
}

type fakeChatRepo struct{ s *memStore }

func (r *fakeChatRepo) Create(_ context.Context, initialSender string) (*models.Chat, error) {
	r.s.chatSeq++
	chat := &models.Chat{
		ID:            r.s.chatSeq,
		InitialSender: initialSender,
		CreatedAt:     r.s.tick(),
	}
	r.s.chats[chat.ID] = chat
	r.s.chatMembers[chat.ID] = make(map[string]struct{})
	return chat, nil
}

func (r *fakeChatRepo) Get(_ context.Context, chatID int) (*models.Chat, error) {
	chat, ok := r.s.chats[chatID]
	if !ok {
		return nil, models.ErrChatNotFound
	}
	return chat, nil
}

func (r *fakeChatRepo) AddMember(_ context.Context, chatID int, login string) error {
	members, ok := r.s.chatMembers[chatID]
	if !ok {
		return models.ErrChatNotFound
	}
	if _, ok := members[login]; ok {
		return models.ErrDuplicateMembership
	}
	members[login] = struct{}{}
	return nil
}

func (r *fakeChatRepo) RemoveMember(_ context.Context, chatID int, login string) (bool, error) {
	members := r.s.chatMembers[chatID]
	if _, ok := members[login]; !ok {
		return false, nil
	}
	delete(members, login)
	return true, nil
}

func (r *fakeChatRepo) IsMember(_ context.Context, chatID int, login string) (bool, error) {
	_, ok := r.s.chatMembers[chatID][login]
	return ok, nil
}

func (r *fakeChatRepo) Members(_ context.Context, chatID int) ([]string, error) {
	var members []string
	for login := range r.s.chatMembers[chatID] {
		members = append(members, login)
	}
	sort.Strings(members)
	return members, nil
}

func (r *fakeChatRepo) ListForUser(_ context.Context, login string) ([]models.ChatWithLastMessage, error) {
	var chats []models.ChatWithLastMessage
	for chatID, chat := range r.s.chats {
		if _, ok := r.s.chatMembers[chatID][login]; !ok {
			continue
		}
		annotated := models.ChatWithLastMessage{Chat: *chat}
		for _, msg := range r.s.messages {
			if msg.ChatID != chatID {
				continue
			}
			if annotated.LastMessageAt == nil || msg.SentAt.After(*annotated.LastMessageAt) {
				t := msg.SentAt
				annotated.LastMessageAt = &t
			}
		}
		chats = append(chats, annotated)
	}
	sort.Slice(chats, func(i, j int) bool {
		a, b := chats[i].LastMessageAt, chats[j].LastMessageAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return chats[i].ID < chats[j].ID
		}
	})
	return chats, nil
}

func (r *fakeChatRepo) Delete(_ context.Context, chatID int) error {
	delete(r.s.chats, chatID)
	delete(r.s.chatMembers, chatID)
	return nil
}

type fakeMessageRepo struct{ s *memStore }

func (r *fakeMessageRepo) Insert(_ context.Context, chatID int, author, text string) (*models.Message, error) {
	r.s.msgSeq++
	msg := &models.Message{
		ID:     r.s.msgSeq,
		ChatID: chatID,
		Author: author,
		Text:   text,
		SentAt: r.s.tick(),
	}
	r.s.messages[msg.ID] = msg
	return msg, nil
}

func (r *fakeMessageRepo) Get(_ context.Context, messageID int) (*models.Message, error) {
	msg, ok := r.s.messages[messageID]
	if !ok {
		return nil, models.ErrMessageNotFound
	}
	return msg, nil
}

func (r *fakeMessageRepo) UpdateText(_ context.Context, messageID int, text string) error {
	msg, ok := r.s.messages[messageID]
	if !ok {
		return models.ErrMessageNotFound
	}
	msg.Text = text
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, messageID int) error {
	delete(r.s.messages, messageID)
	return nil
}

func (r *fakeMessageRepo) DeleteByChat(_ context.Context, chatID int) error {
	for id, msg := range r.s.messages {
		if msg.ChatID == chatID {
			delete(r.s.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) chatMessagesOrdered(chatID int) []models.Message {
	var msgs []models.Message
	for _, msg := range r.s.messages {
		if msg.ChatID == chatID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs
}

func (r *fakeMessageRepo) Page(_ context.Context, chatID, offset, limit int) ([]models.Message, error) {
	msgs := r.chatMessagesOrdered(chatID)
	// offset counts back from the newest message
	end := len(msgs) - offset
	if end <= 0 {
		return nil, nil
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return msgs[start:end], nil
}

type fakeNotificationRepo struct{ s *memStore }

func (r *fakeNotificationRepo) Insert(_ context.Context, recipient string, messageID int) error {
	if r.s.notifications[recipient] == nil {
		r.s.notifications[recipient] = make(map[int]struct{})
	}
	r.s.notifications[recipient][messageID] = struct{}{}
	return nil
}

// Claim empties the recipient's inbox under the store lock, the way
// a single DELETE .. RETURNING hands each row to exactly one caller.
func (r *fakeNotificationRepo) Claim(_ context.Context, recipient string) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pending := r.s.notifications[recipient]
	if len(pending) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	delete(r.s.notifications, recipient)
	sort.Ints(ids)
	return ids, nil
}

func (r *fakeNotificationRepo) Resolve(_ context.Context, messageIDs []int) ([]models.NotificationView, error) {
	var views []models.NotificationView
	for _, messageID := range messageIDs {
		msg, ok := r.s.messages[messageID]
		if !ok {
			continue
		}
		views = append(views, models.NotificationView{
			MessageID: msg.ID,
			ChatID:    msg.ChatID,
			Author:    msg.Author,
			Text:      msg.Text,
			SentAt:    msg.SentAt,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].SentAt.Equal(views[j].SentAt) {
			return views[i].SentAt.Before(views[j].SentAt)
		}
		return views[i].MessageID < views[j].MessageID
	})
	return views, nil
}

func (r *fakeNotificationRepo) DeleteByMessage(_ context.Context, messageID int) error {
	for _, pending := range r.s.notifications {
		delete(pending, messageID)
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteByChat(_ context.Context, chatID int) error {
	for _, pending := range r.s.notifications {
		for messageID := range pending {
			if msg, ok := r.s.messages[messageID]; ok && msg.ChatID == chatID {
				delete(pending, messageID)
			}
		}
	}
	return nil
}

// env wires the services over the fakes the way main wires them over
// Postgres.
type env struct {
	store         *memStore
	userRepo      *fakeUserRepo
	relationRepo  *fakeRelationRepo
	chatRepo      *fakeChatRepo
	messageRepo   *fakeMessageRepo
	notifRepo     *fakeNotificationRepo
	users         UserService
	relationships RelationshipService
	chats         ChatService
	messages      MessageService
	notifications NotificationService
}

func newEnv() *env {
	store := newMemStore()
	userRepo := &fakeUserRepo{s: store}
	relationRepo := &fakeRelationRepo{s: store}
	chatRepo := &fakeChatRepo{s: store}
	messageRepo := &fakeMessageRepo{s: store}
	notifRepo := &fakeNotificationRepo{s: store}
	tx := fakeTxManager{}

	notifications := NewNotificationService(chatRepo, notifRepo, tx)
	return &env{
		store:         store,
		userRepo:      userRepo,
		relationRepo:  relationRepo,
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		notifRepo:     notifRepo,
		users:         NewUserService(userRepo, tx, "test-secret"),
		relationships: NewRelationshipService(userRepo, relationRepo, tx),
		chats:         NewChatService(userRepo, relationRepo, chatRepo, messageRepo, notifRepo, tx),
		messages:      NewMessageService(chatRepo, messageRepo, notifications, tx),
		notifications: notifications,
	}
}

func (e *env) addUser(login string) *models.User {
	user, err := e.userRepo.Create(context.Background(), login, "hash", "555-0100")
	if err != nil {
		panic(err)
	}
	return user
}
