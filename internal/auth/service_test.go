// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/identity"
	"github.com/nutriai/backend/internal/user"
)

type fakeProvider struct {
	users     map[string]*identity.ClerkUser
	passwords map[string]string
	createErr error
	findErr   error
	verifyErr error
	created   []identity.CreateUserParams
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		users:     map[string]*identity.ClerkUser{},
		passwords: map[string]string{},
	}
}

func (f *fakeProvider) add(id, email, password, first string) {
	f.users[email] = &identity.ClerkUser{
		ID:             id,
		EmailAddresses: []identity.EmailAddress{{EmailAddress: email}},
		FirstName:      &first,
	}
	f.passwords[id] = password
}

func (f *fakeProvider) CreateUser(
	_ context.Context,
	p identity.CreateUserParams,
) (*identity.ClerkUser, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	id := fmt.Sprintf("user_%d", len(f.created))
	f.add(id, p.Email, p.Password, p.FirstName)
	return f.users[p.Email], nil
}

func (f *fakeProvider) FindUserByEmail(
	_ context.Context,
	email string,
) (*identity.ClerkUser, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("find clerk user: %w", core.ErrNotFound)
	}
	return u, nil
}

func (f *fakeProvider) VerifyPassword(_ context.Context, id, password string) (bool, error) {
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return f.passwords[id] == password, nil
}

type fakeSyncer struct {
	synced []user.Profile
	err    error
}

func (f *fakeSyncer) Sync(_ context.Context, p user.Profile) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.synced = append(f.synced, p)
	return &user.User{
		ID:           p.ID,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		Subscription: user.TierFree,
		DailyQuota:   user.DefaultDailyQuota,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil, &fakeSyncer{}, discardLogger())

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email: "a@b.com", Password: "password1",
	})
	assert.True(t, errors.Is(err, core.ErrNotConfigured))

	_, err = svc.SignIn(context.Background(), SignInRequest{
		Email: "a@b.com", Password: "password1",
	})
	assert.True(t, errors.Is(err, core.ErrNotConfigured))
}

func TestService_SignUp(t *testing.T) {
	provider := newFakeProvider()
	syncer := &fakeSyncer{}
	svc := NewService(provider, syncer, discardLogger())

	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:     "  Jane@Example.COM ",
		Password:  "password1",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Token)
	assert.Equal(t, "user_1", resp.UserID)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, MessageSignedUp, resp.Message)

	require.Len(t, provider.created, 1)
	assert.Equal(t, "jane@example.com", provider.created[0].Email)

	require.Len(t, syncer.synced, 1)
	assert.Equal(t, "Jane Doe", syncer.synced[0].DisplayName)
}

func TestService_SignUpRejectedByProvider(t *testing.T) {
	provider := newFakeProvider()
	provider.createErr = &identity.ProviderError{
		StatusCode: http.StatusUnprocessableEntity,
		Body:       `{"errors":[{"code":"form_password_pwned"}]}`,
	}
	syncer := &fakeSyncer{}
	svc := NewService(provider, syncer, discardLogger())

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email: "a@b.com", Password: "password1",
	})
	require.Error(t, err)

	appErr := core.MapError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, core.CodeBadRequest, appErr.Code)
	assert.Empty(t, syncer.synced)
}

func TestService_SignIn(t *testing.T) {
	provider := newFakeProvider()
	provider.add("user_42", "jane@example.com", "password1", "Jane")
	syncer := &fakeSyncer{}
	svc := NewService(provider, syncer, discardLogger())

	resp, err := svc.SignIn(context.Background(), SignInRequest{
		Email: "JANE@example.com", Password: "password1",
	})
	require.NoError(t, err)

	assert.Equal(t, identity.SimpleTokenPrefix+"user_42", resp.Token)
	assert.Equal(t, "user_42", resp.UserID)
	assert.Equal(t, MessageSignedIn, resp.Message)
	require.Len(t, syncer.synced, 1)
	assert.Equal(t, "Jane", syncer.synced[0].DisplayName)
}

func TestService_SignInFailures(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		setup      func(p *fakeProvider)
		wantStatus int
	}{
		{
			name:       "unknown email",
			email:      "nobody@example.com",
			password:   "password1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong password",
			email:      "jane@example.com",
			password:   "nope-nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "provider rejects verification",
			email:    "jane@example.com",
			password: "password1",
			setup: func(p *fakeProvider) {
				p.verifyErr = &identity.ProviderError{StatusCode: http.StatusBadRequest}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "provider down",
			email:    "jane@example.com",
			password: "password1",
			setup: func(p *fakeProvider) {
				p.findErr = &identity.ProviderError{StatusCode: http.StatusBadGateway}
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeProvider()
			provider.add("user_42", "jane@example.com", "password1", "Jane")
			if tt.setup != nil {
				tt.setup(provider)
			}
			syncer := &fakeSyncer{}
			svc := NewService(provider, syncer, discardLogger())

			_, err := svc.SignIn(context.Background(), SignInRequest{
				Email: tt.email, Password: tt.password,
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, core.MapError(err).StatusCode)
			assert.Empty(t, syncer.synced)
		})
	}
}

func TestService_SignInSyncFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.add("user_42", "jane@example.com", "password1", "Jane")
	syncer := &fakeSyncer{err: errors.New("db down")}
	svc := NewService(provider, syncer, discardLogger())

	_, err := svc.SignIn(context.Background(), SignInRequest{
		Email: "jane@example.com", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, core.MapError(err).StatusCode)
}
