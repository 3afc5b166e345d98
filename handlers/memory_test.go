package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"friendcircle/models"
	"friendcircle/session"
	"friendcircle/store"
)

// memoryWorld is an in-process stand-in for the MySQL stores and the session
// manager, following the same visibility and request rules.
type memoryWorld struct {
	mu       sync.Mutex
	users    []models.User
	posts    []models.Post
	edges    []models.Friendship
	sessions map[string]int64
	issued   int
}

func newMemoryWorld() *memoryWorld {
	return &memoryWorld{sessions: map[string]int64{}}
}

func (w *memoryWorld) Register(_ context.Context, username, password string) (int64, error) {
	if len(password) > 72 {
		return 0, store.ErrPasswordTooLong
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, u := range w.users {
		if u.Username == username {
			return 0, store.ErrDuplicateUsername
		}
	}
	id := int64(len(w.users) + 1)
	w.users = append(w.users, models.User{ID: id, Username: username, Password: password, CreatedAt: time.Now()})
	return id, nil
}

func (w *memoryWorld) userByName(username string) (*models.User, bool) {
	for i := range w.users {
		if w.users[i].Username == username {
			return &w.users[i], true
		}
	}
	return nil, false
}

func (w *memoryWorld) FindByID(_ context.Context, id int64) (*models.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.users {
		if w.users[i].ID == id {
			u := w.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (w *memoryWorld) List(_ context.Context, excludeID int64) ([]models.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.User
	for _, u := range w.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (w *memoryWorld) Search(ctx context.Context, query string, excludeID int64) ([]models.User, error) {
	all, _ := w.List(ctx, excludeID)
	var out []models.User
	for _, u := range all {
		if containsFold(u.Username, query) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (w *memoryWorld) Create(_ context.Context, authorID int64, content string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := int64(len(w.posts) + 1)
	w.posts = append(w.posts, models.Post{ID: id, UserID: authorID, Content: content, CreatedAt: time.Now()})
	return id, nil
}

func (w *memoryWorld) ListByAuthor(_ context.Context, authorID int64) ([]models.Post, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.Post{}
	for _, p := range w.posts {
		if p.UserID == authorID {
			out = append(out, w.withAuthor(p))
		}
	}
	return out, nil
}

func (w *memoryWorld) withAuthor(p models.Post) models.Post {
	for _, u := range w.users {
		if u.ID == p.UserID {
			p.Username = u.Username
		}
	}
	return p
}

func (w *memoryWorld) accepted(a, b int64) bool {
	for _, e := range w.edges {
		if e.Status != models.FriendshipAccepted {
			continue
		}
		if (e.UserID == a && e.FriendID == b) || (e.UserID == b && e.FriendID == a) {
			return true
		}
	}
	return false
}

func (w *memoryWorld) VisiblePosts(_ context.Context, viewerID int64) ([]models.Post, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.Post{}
	for _, p := range w.posts {
		if p.UserID == viewerID || w.accepted(viewerID, p.UserID) {
			out = append(out, w.withAuthor(p))
		}
	}
	return out, nil
}

func (w *memoryWorld) SendRequest(_ context.Context, requesterID int64, targetUsername string) (*models.Friendship, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	target, ok := w.userByName(targetUsername)
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if target.ID == requesterID {
		return nil, store.ErrSelfRequest
	}
	for _, e := range w.edges {
		if e.UserID == requesterID && e.FriendID == target.ID {
			return nil, store.ErrAlreadyRequestedOrFriends
		}
	}
	now := time.Now()
	f := models.Friendship{
		ID: int64(len(w.edges) + 1), UserID: requesterID, FriendID: target.ID,
		Status: models.FriendshipPending, CreatedAt: now, UpdatedAt: now,
	}
	w.edges = append(w.edges, f)
	return &f, nil
}

func (w *memoryWorld) ListPendingFor(_ context.Context, userID int64) ([]models.PendingRequest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.PendingRequest{}
	for _, e := range w.edges {
		if e.FriendID == userID && e.Status == models.FriendshipPending {
			r := models.PendingRequest{ID: e.ID, RequesterID: e.UserID}
			for _, u := range w.users {
				if u.ID == e.UserID {
					r.RequesterUsername = u.Username
				}
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (w *memoryWorld) Respond(_ context.Context, requestID, responderID int64, action models.FriendAction) (*models.Friendship, error) {
	if !action.Valid() {
		return nil, store.ErrInvalidAction
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.edges {
		e := &w.edges[i]
		if e.ID != requestID || e.FriendID != responderID || e.Status != models.FriendshipPending {
			continue
		}
		e.UpdatedAt = time.Now()
		if action == models.ActionReject {
			e.Status = models.FriendshipRejected
			f := *e
			return &f, nil
		}
		e.Status = models.FriendshipAccepted
		f := *e
		w.upsertAccepted(responderID, f.UserID)
		return &f, nil
	}
	return nil, store.ErrInvalidRequest
}

func (w *memoryWorld) upsertAccepted(userID, friendID int64) {
	for i := range w.edges {
		if w.edges[i].UserID == userID && w.edges[i].FriendID == friendID {
			w.edges[i].Status = models.FriendshipAccepted
			return
		}
	}
	w.edges = append(w.edges, models.Friendship{
		ID: int64(len(w.edges) + 1), UserID: userID, FriendID: friendID, Status: models.FriendshipAccepted,
	})
}

func (w *memoryWorld) ListFriends(_ context.Context, userID int64) ([]models.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.User{}
	for _, u := range w.users {
		if u.ID != userID && w.accepted(userID, u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (w *memoryWorld) countAccepted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, e := range w.edges {
		if e.Status == models.FriendshipAccepted {
			n++
		}
	}
	return n
}

func (w *memoryWorld) Login(_ context.Context, username, password string) (*session.Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, ok := w.userByName(username)
	if !ok || u.Password != password {
		return nil, session.ErrInvalidCredentials
	}
	w.issued++
	token := fmt.Sprintf("token-%d", w.issued)
	w.sessions[token] = u.ID
	user := *u
	return &session.Session{ID: token, Token: token, User: &user, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (w *memoryWorld) Authenticate(_ context.Context, token string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.sessions[token]; ok {
		return id, nil
	}
	return 0, session.ErrUnauthorized
}

func (w *memoryWorld) Logout(_ context.Context, token string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sessions, token)
	return nil
}

func (w *memoryWorld) TTL() time.Duration {
	return time.Hour
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type sentEvent struct {
	UserID int64
	Event  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Event: event})
}

func (n *recordingNotifier) has(userID int64, event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.UserID == userID && e.Event == event {
			return true
		}
	}
	return false
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
