package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/models"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]*models.User
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byMail: map[string]*models.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byMail[email]; ok {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Email: email, PasswordHash: hash}
	f.byMail[email] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byMail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byMail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}
