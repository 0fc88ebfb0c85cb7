package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mberkey/authflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleVerifierAcceptsValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "good-token", r.URL.Query().Get("id_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-sub-1","email":"tee@example.com","name":"Tee Becker"}`))
	}))
	defer srv.Close()

	verifier := NewGoogleVerifier(srv.URL)
	identity, err := verifier.Verify(context.Background(), "good-token", "access-token")

	require.NoError(t, err)
	assert.Equal(t, "g-sub-1", identity.Subject)
	assert.Equal(t, "tee@example.com", identity.Email)
	assert.Equal(t, "Tee Becker", identity.FullName)
}

func TestGoogleVerifierRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	verifier := NewGoogleVerifier(srv.URL)
	_, err := verifier.Verify(context.Background(), "bad-token", "")

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthInvalidCredentials, authErr.Code)
}

func TestGoogleVerifierNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	verifier := NewGoogleVerifier(srv.URL)
	_, err := verifier.Verify(context.Background(), "token", "")

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthNetworkError, authErr.Code)
}

func TestGoogleVerifierMissingIDToken(t *testing.T) {
	verifier := NewGoogleVerifier("http://localhost:0")
	_, err := verifier.Verify(context.Background(), "", "access-token")

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthInvalidCredentials, authErr.Code)
}

func TestGoogleVerifierMissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"tee@example.com"}`))
	}))
	defer srv.Close()

	verifier := NewGoogleVerifier(srv.URL)
	_, err := verifier.Verify(context.Background(), "token", "")

	require.Error(t, err)
}
