package dto

import "github.com/mberkey/authflow/internal/forms"

// Form field payloads use pointers: a field the user never typed into
// arrives as null and is distinct from an empty string. Validity is decided
// by the forms package, not binding tags.

// LoginRequest represents a login form snapshot
type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Form converts the request into its form state
func (r LoginRequest) Form() forms.LoginForm {
	return forms.LoginForm{Email: r.Email, Password: r.Password}
}

// RegisterRequest represents a registration form snapshot
type RegisterRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"fullname"`
}

// Form converts the request into its form state
func (r RegisterRequest) Form() forms.RegistrationForm {
	return forms.RegistrationForm{Email: r.Email, Password: r.Password, FullName: r.FullName}
}

// GoogleSignInRequest carries the federated credential pair
type GoogleSignInRequest struct {
	IDToken     string `json:"id_token" binding:"required"`
	AccessToken string `json:"access_token"`
}

// PasswordResetRequest represents a password reset form snapshot
type PasswordResetRequest struct {
	Email *string `json:"email"`
}

// Form converts the request into its form state
func (r PasswordResetRequest) Form() forms.PasswordResetForm {
	return forms.PasswordResetForm{Email: r.Email}
}

// PasswordResetConfirmRequest redeems a reset token with a new password.
// The token comes from the reset link, not a form, so both fields bind
// strictly.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserInfo represents the profile record in responses
type UserInfo struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FullName          string `json:"fullname"`
	HasSeenOnboarding bool   `json:"has_seen_onboarding"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	AccessToken    string   `json:"access_token"`
	TokenType      string   `json:"token_type"`
	ExpiresIn      int      `json:"expires_in"`
	User           UserInfo `json:"user"`
	ShowOnboarding bool     `json:"show_onboarding"`
}

// MeResponse represents the current user's profile
type MeResponse struct {
	User           UserInfo `json:"user"`
	ShowOnboarding bool     `json:"show_onboarding"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
