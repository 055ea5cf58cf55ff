// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/core"
)

type fakeRepo struct {
	users   map[string]*User
	updates int
	// racer is inserted by a "concurrent request" right before Create runs.
	racer  *User
	getErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	if f.racer != nil {
		f.users[f.racer.ID] = f.racer
		f.racer = nil
	}
	if _, ok := f.users[u.ID]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(context.Context, string) (*User, error) {
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	f.updates++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) ConsumeQuota(context.Context, string) (*QuotaState, error) {
	return nil, core.ErrQuotaExceeded
}

func (f *fakeRepo) ResetQuotas(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	return len(f.users), nil
}

func TestSync_CreatesWithDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, 10)

	u, err := svc.Sync(context.Background(), Profile{
		ID:    "user_1",
		Email: " Jane@Example.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "User", u.DisplayName)
	assert.Equal(t, TierFree, u.Subscription)
	assert.Equal(t, 10, u.DailyQuota)
	assert.Equal(t, 0, u.QuotaUsed)
	assert.Len(t, repo.users, 1)
}

func TestSync_SynthesizesEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), 10)

	u, err := svc.Sync(context.Background(), Profile{ID: "user_2"})
	require.NoError(t, err)

	assert.Equal(t, "user_2@clerk.app", u.Email)
}

func TestSync_UpdatesChangedProfile(t *testing.T) {
	repo := newFakeRepo()
	repo.users["user_1"] = &User{
		ID: "user_1", Email: "old@example.com", DisplayName: "Old",
		Subscription: TierPro, DailyQuota: 100, QuotaUsed: 7,
	}
	svc := NewService(repo, 10)

	u, err := svc.Sync(context.Background(), Profile{
		ID: "user_1", Email: "new@example.com", DisplayName: "New",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "New", u.DisplayName)
	assert.Equal(t, TierPro, u.Subscription)
	assert.Equal(t, 7, u.QuotaUsed)
	assert.Equal(t, 1, repo.updates)
}

func TestSync_EmptyFieldsNeverOverwrite(t *testing.T) {
	repo := newFakeRepo()
	repo.users["user_1"] = &User{ID: "user_1", Email: "kept@example.com", DisplayName: "Kept"}
	svc := NewService(repo, 10)

	u, err := svc.Sync(context.Background(), Profile{ID: "user_1"})
	require.NoError(t, err)

	assert.Equal(t, "kept@example.com", u.Email)
	assert.Equal(t, "Kept", u.DisplayName)
	assert.Zero(t, repo.updates)
}

func TestSync_LosesCreateRace(t *testing.T) {
	repo := newFakeRepo()
	repo.racer = &User{ID: "user_1", Email: "first@example.com", DisplayName: "First"}
	svc := NewService(repo, 10)

	u, err := svc.Sync(context.Background(), Profile{ID: "user_1", Email: "second@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "first@example.com", u.Email)
	assert.Len(t, repo.users, 1)
}

func TestSync_Errors(t *testing.T) {
	svc := NewService(newFakeRepo(), 10)
	_, err := svc.Sync(context.Background(), Profile{})
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	repo := newFakeRepo()
	repo.getErr = errors.New("connection reset")
	_, err = NewService(repo, 10).Sync(context.Background(), Profile{ID: "user_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetByID_EmptyID(t *testing.T) {
	svc := NewService(newFakeRepo(), 10)

	_, err := svc.GetByID(context.Background(), "")
	assert.True(t, errors.Is(err, core.ErrUnauthorized))
}

func TestQuotaRemaining(t *testing.T) {
	tests := []struct {
		name  string
		user  User
		wants int
	}{
		{"fresh", User{DailyQuota: 10}, 10},
		{"partly used", User{DailyQuota: 10, QuotaUsed: 4}, 6},
		{"exhausted", User{DailyQuota: 10, QuotaUsed: 10}, 0},
		{"overdrawn clamps", User{DailyQuota: 10, QuotaUsed: 12}, 0},
		{"unlimited", User{DailyQuota: UnlimitedQuota, QuotaUsed: 500}, UnlimitedQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.user.QuotaRemaining())
		})
	}
}
