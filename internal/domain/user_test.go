package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserRecordDecodesFields(t *testing.T) {
	u := NewUserRecord("acc-1", map[string]string{
		ProfileFieldEmail:      "tee@example.com",
		ProfileFieldFullName:   "Tee Becker",
		ProfileFieldOnboarding: "true",
	})

	assert.Equal(t, "acc-1", u.ID)
	assert.Equal(t, "tee@example.com", u.Email)
	assert.Equal(t, "Tee Becker", u.FullName)
	assert.True(t, u.HasSeenOnboarding)
}

func TestNewUserRecordDefaultsMissingFields(t *testing.T) {
	u := NewUserRecord("acc-1", map[string]string{})

	assert.Equal(t, "acc-1", u.ID)
	assert.Empty(t, u.Email)
	assert.Empty(t, u.FullName)
	assert.False(t, u.HasSeenOnboarding)
}

func TestNewUserRecordIgnoresMalformedFlag(t *testing.T) {
	u := NewUserRecord("acc-1", map[string]string{
		ProfileFieldOnboarding: "definitely",
	})

	assert.False(t, u.HasSeenOnboarding)
}

func TestProfileFieldsRoundTrip(t *testing.T) {
	u := &UserRecord{ID: "acc-1", Email: "tee@example.com", FullName: "Tee Becker", HasSeenOnboarding: true}

	decoded := NewUserRecord(u.ID, u.ProfileFields())
	assert.Equal(t, u, decoded)
}

func TestAuthErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := WrapAuthError(AuthNetworkError, cause, "identity provider unavailable")

	assert.Equal(t, "identity provider unavailable", err.Error())
	assert.ErrorIs(t, err, cause)
}
