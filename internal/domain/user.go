package domain

import (
	"strconv"
	"time"
)

// Profile document field names as stored in the profile store.
const (
	ProfileFieldEmail      = "email"
	ProfileFieldFullName   = "fullname"
	ProfileFieldOnboarding = "hasSeenOnboardingPage"
)

// Account represents an account row owned by the identity provider.
type Account struct {
	ID              string     `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	FullName        string     `json:"full_name" db:"full_name"`
	Provider        string     `json:"provider" db:"provider"` // empty for password accounts, "google" for federated
	ProviderSubject string     `json:"-" db:"provider_subject"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserRecord is the session-local view of a profile document. The profile
// store holds the durable copy; this value is a read-through cache for the
// active session. ID never changes after construction and always equals the
// identity provider's account id for the authenticated session.
type UserRecord struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FullName          string `json:"fullname"`
	HasSeenOnboarding bool   `json:"hasSeenOnboardingPage"`
}

// NewUserRecord decodes a profile document into a UserRecord. Missing fields
// default to the zero value rather than failing the decode.
func NewUserRecord(id string, fields map[string]string) *UserRecord {
	u := &UserRecord{ID: id}
	u.Email = fields[ProfileFieldEmail]
	u.FullName = fields[ProfileFieldFullName]
	if v, ok := fields[ProfileFieldOnboarding]; ok {
		seen, err := strconv.ParseBool(v)
		u.HasSeenOnboarding = err == nil && seen
	}
	return u
}

// ProfileFields returns the record as a profile document field map.
func (u *UserRecord) ProfileFields() map[string]string {
	return map[string]string{
		ProfileFieldEmail:      u.Email,
		ProfileFieldFullName:   u.FullName,
		ProfileFieldOnboarding: strconv.FormatBool(u.HasSeenOnboarding),
	}
}

// Session represents an authenticated session issued by the identity provider.
type Session struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// SessionClaims represents the claims carried by a session token.
type SessionClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
}

// IsExpired checks if the session token is expired.
func (c SessionClaims) IsExpired() bool {
	return time.Now().Unix() > c.Exp
}

// FederatedIdentity is the assertion obtained from a federated provider in
// exchange for an id token.
type FederatedIdentity struct {
	Subject  string
	Email    string
	FullName string
}
