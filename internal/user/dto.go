// AngelaMos | 2026
// dto.go

package user

type MeResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	Subscription   string `json:"subscription"`
	DailyQuota     int    `json:"daily_quota"`
	QuotaUsed      int    `json:"quota_used"`
	QuotaRemaining int    `json:"quota_remaining"`
}

func ToMeResponse(u *User) MeResponse {
	return MeResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Subscription:   u.Subscription,
		DailyQuota:     u.DailyQuota,
		QuotaUsed:      u.QuotaUsed,
		QuotaRemaining: u.QuotaRemaining(),
	}
}
