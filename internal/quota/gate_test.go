// AngelaMos | 2026
// gate_test.go

package quota

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/user"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		quota     int
		used      int
		wantBlock bool
	}{
		{name: "fresh user", quota: 10, used: 0},
		{name: "one left", quota: 10, used: 9},
		{name: "at limit", quota: 10, used: 10, wantBlock: true},
		{name: "over limit", quota: 10, used: 12, wantBlock: true},
		{name: "zero quota", quota: 0, used: 0, wantBlock: true},
		{name: "unlimited", quota: user.UnlimitedQuota, used: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &user.User{ID: "u1", DailyQuota: tt.quota, QuotaUsed: tt.used}

			err := Check(u)
			if tt.wantBlock {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrQuotaExceeded)
				assert.True(t, Exhausted(u))
				assert.False(t, HasCapacity(u))
				return
			}
			require.NoError(t, err)
			assert.True(t, HasCapacity(u))
		})
	}
}

type fakeStore struct {
	reset int64
	err   error
	calls int
}

func (f *fakeStore) ResetQuotas(context.Context) (int64, error) {
	f.calls++
	return f.reset, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResetter_ResetNow(t *testing.T) {
	store := &fakeStore{reset: 7}
	r := NewResetter(store, discardLogger())

	n, err := r.ResetNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, 1, store.calls)
}

func TestResetter_ResetNowError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	r := NewResetter(store, discardLogger())

	_, err := r.ResetNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset quotas")
}

func TestResetter_StartRejectsBadSchedule(t *testing.T) {
	r := NewResetter(&fakeStore{}, discardLogger())

	err := r.Start("not a cron line")
	require.Error(t, err)
}

func TestResetter_StartAndStop(t *testing.T) {
	r := NewResetter(&fakeStore{}, discardLogger())

	require.NoError(t, r.Start("0 0 * * *"))
	r.Stop(context.Background())
}
