// AngelaMos | 2026
// gate.go

package quota

import (
	"fmt"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/user"
)

// Exhausted reports whether u has used its whole daily allowance. The
// unlimited sentinel never exhausts.
func Exhausted(u *user.User) bool {
	return u.DailyQuota != user.UnlimitedQuota && u.QuotaUsed >= u.DailyQuota
}

func HasCapacity(u *user.User) bool {
	return !Exhausted(u)
}

// Check is the pre-flight gate run before any paid upstream call. The
// authoritative decrement happens atomically when the meal is stored.
func Check(u *user.User) error {
	if Exhausted(u) {
		return fmt.Errorf("quota check %s: %w", u.ID, core.ErrQuotaExceeded)
	}
	return nil
}
