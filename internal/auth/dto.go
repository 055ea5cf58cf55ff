// AngelaMos | 2026
// dto.go

package auth

type SignUpRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is shared by signup and signin. Signup leaves Token empty;
// the client is expected to sign in afterwards.
type AuthResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
