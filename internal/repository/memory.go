package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vinay02022/testinBackend/internal/models"
)

// Memory is an in-process store for tests and local development. Each
// accessor returns a view sharing the same state.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	emails   map[string]string
	refresh  map[string]models.RefreshToken
	comments map[string]models.Comment
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		refresh:  make(map[string]models.RefreshToken),
		comments: make(map[string]models.Comment),
	}
}

func (m *Memory) Users() *MemoryUsers                 { return &MemoryUsers{m: m} }
func (m *Memory) RefreshTokens() *MemoryRefreshTokens { return &MemoryRefreshTokens{m: m} }
func (m *Memory) Comments() *MemoryComments           { return &MemoryComments{m: m} }

// RefreshTokenCount is exposed for tests.
func (m *Memory) RefreshTokenCount(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, t := range m.refresh {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func cloneUser(u models.User) models.User {
	u.PasswordHash = bytes.Clone(u.PasswordHash)
	if u.PendingReset != nil {
		reset := *u.PendingReset
		reset.TokenHash = bytes.Clone(reset.TokenHash)
		u.PendingReset = &reset
	}
	return u
}

type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Create(_ context.Context, user models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.emails[user.Email]; exists {
		return ErrEmailTaken
	}
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = cloneUser(user)
	r.m.emails[user.Email] = user.ID
	return nil
}

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	id, ok := r.m.emails[email]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return cloneUser(r.m.users[id]), nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id string) (models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUsers) FindByResetHash(_ context.Context, hash []byte, now time.Time) (models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, user := range r.m.users {
		reset := user.PendingReset
		if reset != nil && bytes.Equal(reset.TokenHash, hash) && reset.ExpiresAt.After(now) {
			return cloneUser(user), nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *MemoryUsers) SetPendingReset(_ context.Context, userID string, reset models.PasswordReset, now time.Time) error {
	return r.update(userID, func(u *models.User) bool {
		reset.TokenHash = bytes.Clone(reset.TokenHash)
		u.PendingReset = &reset
		u.UpdatedAt = now
		return true
	})
}

func (r *MemoryUsers) ConsumeReset(_ context.Context, userID string, resetHash, passwordHash []byte, now time.Time) error {
	return r.update(userID, func(u *models.User) bool {
		reset := u.PendingReset
		if reset == nil || !bytes.Equal(reset.TokenHash, resetHash) || !reset.ExpiresAt.After(now) {
			return false
		}
		u.PasswordHash = bytes.Clone(passwordHash)
		u.PendingReset = nil
		u.UpdatedAt = now
		return true
	})
}

func (r *MemoryUsers) SetPermissions(_ context.Context, userID string, permissions models.PermissionSet, now time.Time) error {
	return r.update(userID, func(u *models.User) bool {
		u.Permissions = permissions
		u.UpdatedAt = now
		return true
	})
}

// update applies fn under the write lock; fn returning false counts as no
// matching row.
func (r *MemoryUsers) update(userID string, fn func(u *models.User) bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	user, ok := r.m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user = cloneUser(user)
	if !fn(&user) {
		return ErrUserNotFound
	}
	r.m.users[userID] = user
	return nil
}

func (r *MemoryUsers) ClearExpiredResets(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for id, user := range r.m.users {
		if user.PendingReset != nil && user.PendingReset.Expired(now) {
			user.PendingReset = nil
			r.m.users[id] = user
			n++
		}
	}
	return n, nil
}

type MemoryRefreshTokens struct{ m *Memory }

func (r *MemoryRefreshTokens) Create(_ context.Context, token models.RefreshToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	token.TokenHash = bytes.Clone(token.TokenHash)
	r.m.refresh[string(token.TokenHash)] = token
	return nil
}

func (r *MemoryRefreshTokens) FindByHash(_ context.Context, hash []byte) (models.RefreshToken, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	token, ok := r.m.refresh[string(hash)]
	if !ok {
		return models.RefreshToken{}, ErrRefreshTokenNotFound
	}
	return token, nil
}

func (r *MemoryRefreshTokens) DeleteByHash(_ context.Context, hash []byte) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.refresh, string(hash))
	return nil
}

func (r *MemoryRefreshTokens) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for key, token := range r.m.refresh {
		if token.UserID == userID {
			delete(r.m.refresh, key)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRefreshTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for key, token := range r.m.refresh {
		if token.Expired(now) {
			delete(r.m.refresh, key)
			n++
		}
	}
	return n, nil
}

type MemoryComments struct{ m *Memory }

func (r *MemoryComments) Create(_ context.Context, comment models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	comment.Author = nil
	r.m.comments[comment.ID] = comment
	return nil
}

func (r *MemoryComments) List(_ context.Context) ([]models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	comments := make([]models.Comment, 0, len(r.m.comments))
	for _, c := range r.m.comments {
		if author, ok := r.m.author(c.AuthorID); ok {
			c.Author = author
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *MemoryComments) GetByID(_ context.Context, id string) (models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	c, ok := r.m.comments[id]
	if !ok {
		return models.Comment{}, ErrCommentNotFound
	}
	author, ok := r.m.author(c.AuthorID)
	if !ok {
		return models.Comment{}, ErrCommentNotFound
	}
	c.Author = author
	return c, nil
}

func (r *MemoryComments) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(r.m.comments, id)
	return nil
}

// author mirrors the inner join used by the postgres repository.
func (m *Memory) author(userID string) (*models.Author, bool) {
	user, ok := m.users[userID]
	if !ok {
		return nil, false
	}
	return &models.Author{ID: user.ID, Name: user.Name, Email: user.Email}, true
}
