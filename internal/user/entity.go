// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	DisplayName    string    `db:"display_name"`
	Subscription   string    `db:"subscription"`
	DailyQuota     int       `db:"daily_quota"`
	QuotaUsed      int       `db:"quota_used"`
	QuotaResetDate time.Time `db:"quota_reset_date"`
	CreatedAt      time.Time `db:"created_at"`
}

// UnlimitedQuota is the DailyQuota sentinel for users without a cap.
const UnlimitedQuota = -1

const DefaultDailyQuota = 10

const (
	TierFree    = "free"
	TierPro     = "pro"
	TierPremium = "premium"
)

// QuotaRemaining returns how many analyses are left today, or UnlimitedQuota.
func (u *User) QuotaRemaining() int {
	if u.DailyQuota == UnlimitedQuota {
		return UnlimitedQuota
	}
	remaining := u.DailyQuota - u.QuotaUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// QuotaState is the counter pair returned by an atomic quota consumption.
type QuotaState struct {
	DailyQuota int `db:"daily_quota"`
	QuotaUsed  int `db:"quota_used"`
}

func (q QuotaState) Remaining() int {
	u := User{DailyQuota: q.DailyQuota, QuotaUsed: q.QuotaUsed}
	return u.QuotaRemaining()
}
