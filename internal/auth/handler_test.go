// AngelaMos | 2026
// handler_test.go

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/middleware"
	"github.com/nutriai/backend/internal/user"
)

type memUsers struct {
	byID map[string]*user.User
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	if _, ok := m.byID[u.ID]; ok {
		return core.ErrDuplicateKey
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memUsers) UpdateProfile(_ context.Context, u *user.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) ConsumeQuota(context.Context, string) (*user.QuotaState, error) {
	return nil, core.ErrQuotaExceeded
}

func (m *memUsers) ResetQuotas(context.Context) (int64, error) { return 0, nil }

func (m *memUsers) Count(context.Context) (int, error) { return len(m.byID), nil }

type handlerFixture struct {
	router   chi.Router
	provider *fakeProvider
	users    *user.Service
}

func newHandlerFixture() *handlerFixture {
	provider := newFakeProvider()
	provider.add("user_42", "jane@example.com", "password1", "Jane")

	users := user.NewService(&memUsers{byID: map[string]*user.User{}}, user.DefaultDailyQuota)
	svc := NewService(provider, users, discardLogger())

	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Test-User")
			if id == "" {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}
			ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{
				UserID: id, Tier: user.TierFree,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	NewHandler(svc, users).RegisterRoutes(r, asUser)

	return &handlerFixture{router: r, provider: provider, users: users}
}

func (f *handlerFixture) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SignUp(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/auth/signup",
		`{"email":"new@example.com","password":"longenough","first_name":"New"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Empty(t, resp.Token)
	assert.Equal(t, MessageSignedUp, resp.Message)

	u, err := f.users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.TierFree, u.Subscription)
	assert.Equal(t, "New", u.DisplayName)
}

func TestHandler_SignUpInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"longenough"}`, http.StatusUnprocessableEntity},
		{"short password", `{"email":"a@b.com","password":"short"}`, http.StatusUnprocessableEntity},
		{"missing password", `{"email":"a@b.com"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			rec := f.do(http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, f.provider.created)
		})
	}
}

func TestHandler_SignInThenMe(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/auth/signin",
		`{"email":"jane@example.com","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "clerk_user_42", resp.Token)

	rec = f.do(http.MethodGet, "/auth/me", "", "X-Test-User", resp.UserID)
	require.Equal(t, http.StatusOK, rec.Code)

	var me user.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "user_42", me.ID)
	assert.Equal(t, "jane@example.com", me.Email)
	assert.Equal(t, user.DefaultDailyQuota, me.QuotaRemaining)
}

func TestHandler_SignInWrongPassword(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/auth/signin",
		`{"email":"jane@example.com","password":"wrong-one"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail":"invalid email or password"`)
}

func TestHandler_MeRequiresAuth(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodGet, "/auth/me", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
