// AngelaMos | 2026
// resolver_test.go

package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/user"
)

type recordingSyncer struct {
	profiles []user.Profile
}

func (s *recordingSyncer) Sync(_ context.Context, p user.Profile) (*user.User, error) {
	s.profiles = append(s.profiles, p)
	return &user.User{
		ID:           p.ID,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		Subscription: user.TierFree,
		DailyQuota:   user.DefaultDailyQuota,
	}, nil
}

func (s *recordingSyncer) last() user.Profile {
	return s.profiles[len(s.profiles)-1]
}

type stubProvider struct {
	user *ClerkUser
	err  error
}

func (p *stubProvider) GetUser(context.Context, string) (*ClerkUser, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.user, nil
}

type stubVerifier struct {
	claims *Claims
	err    error
}

func (v stubVerifier) Verify(context.Context, string) (*Claims, error) {
	return v.claims, v.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_DevMode(t *testing.T) {
	users := &recordingSyncer{}
	r := NewResolver(users, nil, stubVerifier{}, quietLogger())
	require.True(t, r.DevMode())

	for _, token := range []string{"", "anything", "clerk_user_9"} {
		u, err := r.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, DevUserID, u.ID)
	}
	assert.Equal(t, user.Profile{ID: DevUserID, Email: DevUserEmail, DisplayName: DevUserName}, users.last())
}

func TestResolver_MissingToken(t *testing.T) {
	r := NewResolver(&recordingSyncer{}, &stubProvider{}, stubVerifier{}, quietLogger())

	_, err := r.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, core.MapError(err).StatusCode)
}

func TestResolver_SimpleToken(t *testing.T) {
	users := &recordingSyncer{}
	provider := &stubProvider{user: &ClerkUser{
		ID:             "user_42",
		EmailAddresses: []EmailAddress{{EmailAddress: "fresh@example.com"}},
		FirstName:      strPtr("Fresh"),
	}}
	r := NewResolver(users, provider, stubVerifier{err: errors.New("must not be called")}, quietLogger())

	u, err := r.Resolve(context.Background(), "clerk_user_42")
	require.NoError(t, err)
	assert.Equal(t, "user_42", u.ID)
	assert.Equal(t, user.Profile{ID: "user_42", Email: "fresh@example.com", DisplayName: "Fresh"}, users.last())
}

func TestResolver_SimpleTokenEmptyID(t *testing.T) {
	r := NewResolver(&recordingSyncer{}, &stubProvider{}, stubVerifier{}, quietLogger())

	_, err := r.Resolve(context.Background(), "clerk_")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestResolver_EnrichmentFailureFallsBackToClaims(t *testing.T) {
	users := &recordingSyncer{}
	provider := &stubProvider{err: errors.New("clerk down")}
	verifier := stubVerifier{claims: &Claims{Subject: "user_7", Email: "claims@example.com", Name: "Claimed"}}
	r := NewResolver(users, provider, verifier, quietLogger())

	u, err := r.Resolve(context.Background(), "eyJhbGciOi.fake.jwt")
	require.NoError(t, err)
	assert.Equal(t, "user_7", u.ID)
	assert.Equal(t, user.Profile{ID: "user_7", Email: "claims@example.com", DisplayName: "Claimed"}, users.last())
}

func TestResolver_InvalidToken(t *testing.T) {
	verifier := stubVerifier{err: core.TokenInvalidError()}
	r := NewResolver(&recordingSyncer{}, &stubProvider{}, verifier, quietLogger())

	_, err := r.Resolve(context.Background(), "garbage")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestResolver_ResolvePrincipal(t *testing.T) {
	r := NewResolver(&recordingSyncer{}, &stubProvider{err: errors.New("skip")}, stubVerifier{}, quietLogger())

	p, err := r.ResolvePrincipal(context.Background(), "clerk_user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", p.UserID)
	assert.Equal(t, user.TierFree, p.Tier)
}
