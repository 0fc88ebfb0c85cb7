package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mberkey/authflow/internal/domain"
)

const federatedExchangeTimeout = 10 * time.Second

// GoogleVerifier validates Google id tokens against the tokeninfo endpoint.
// The endpoint is configurable so tests can stand in a local server.
type GoogleVerifier struct {
	endpoint string
	client   *http.Client
}

// NewGoogleVerifier creates a new Google id token verifier
func NewGoogleVerifier(endpoint string) *GoogleVerifier {
	return &GoogleVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: federatedExchangeTimeout},
	}
}

// Verify exchanges the id token for the subject's claims. The access token
// is part of the credential pair contract but tokeninfo only needs the id
// token.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken, accessToken string) (*domain.FederatedIdentity, error) {
	if idToken == "" {
		return nil, domain.NewAuthError(domain.AuthInvalidCredentials, "missing federated id token")
	}

	reqURL := fmt.Sprintf("%s?id_token=%s", g.endpoint, url.QueryEscape(idToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.WrapAuthError(domain.AuthOther, err, "failed to build tokeninfo request")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.WrapAuthError(domain.AuthNetworkError, err, "federated credential exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewAuthError(domain.AuthInvalidCredentials, "federated credential rejected (status %d)", resp.StatusCode)
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.WrapAuthError(domain.AuthOther, err, "failed to decode tokeninfo response")
	}

	if payload.Sub == "" {
		return nil, domain.NewAuthError(domain.AuthOther, "tokeninfo response missing subject")
	}

	return &domain.FederatedIdentity{
		Subject:  payload.Sub,
		Email:    payload.Email,
		FullName: payload.Name,
	}, nil
}
