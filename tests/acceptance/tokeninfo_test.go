package acceptance

import (
	"encoding/json"
	"net/http"
	"sync"
)

// fakeTokenInfo stands in for Google's tokeninfo endpoint. Tests register
// id tokens with the identity they should resolve to; anything else is
// rejected the way Google rejects it.
type fakeTokenInfo struct {
	mu     sync.Mutex
	tokens map[string]tokenInfoResponse
}

type tokenInfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newFakeTokenInfo() *fakeTokenInfo {
	return &fakeTokenInfo{tokens: make(map[string]tokenInfoResponse)}
}

func (f *fakeTokenInfo) Register(idToken, sub, email, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[idToken] = tokenInfoResponse{Sub: sub, Email: email, Name: name}
}

func (f *fakeTokenInfo) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]tokenInfoResponse)
}

func (f *fakeTokenInfo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	info, ok := f.tokens[r.URL.Query().Get("id_token")]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_token"})
		return
	}

	_ = json.NewEncoder(w).Encode(info)
}
