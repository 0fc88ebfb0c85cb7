package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/internal/repository"
	"go.uber.org/zap"
)

// OnboardingState is a state of the per-session onboarding machine.
type OnboardingState int

const (
	OnboardingNoUser OnboardingState = iota
	OnboardingUserLoaded
	OnboardingShown
	OnboardingAcknowledged
)

// OnboardingMachine tracks onboarding presentation for one authenticated
// session. The show signal fires at most once per session, and dismissal
// flips the in-memory flag before the profile patch resolves. A failed
// patch is logged and absorbed: the user is not shown onboarding again this
// session, and the store catches up on the next successful fetch.
type OnboardingMachine struct {
	mu       sync.Mutex
	state    OnboardingState
	user     *domain.UserRecord
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func newOnboardingMachine(user *domain.UserRecord, profiles repository.ProfileRepository, logger *zap.Logger) *OnboardingMachine {
	return &OnboardingMachine{
		state:    OnboardingUserLoaded,
		user:     user,
		profiles: profiles,
		logger:   logger,
	}
}

// State returns the current machine state.
func (m *OnboardingMachine) State() OnboardingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the session's user record.
func (m *OnboardingMachine) User() *domain.UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// ShouldShowOnboarding reports whether the onboarding sequence should be
// presented now. It returns true exactly once: when a record is loaded and
// its flag is unset. Subsequent calls return false until a new session is
// started.
func (m *OnboardingMachine) ShouldShowOnboarding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != OnboardingUserLoaded || m.user.HasSeenOnboarding {
		return false
	}

	m.state = OnboardingShown
	return true
}

// Dismiss handles the get-started signal: the in-memory flag flips first,
// then exactly one patch is issued to the profile store. A patch failure
// does not roll the flag back and is not surfaced.
func (m *OnboardingMachine) Dismiss(ctx context.Context) {
	m.mu.Lock()
	if m.state != OnboardingShown {
		m.mu.Unlock()
		return
	}
	m.state = OnboardingAcknowledged
	m.user.HasSeenOnboarding = true
	accountID := m.user.ID
	m.mu.Unlock()

	err := m.profiles.PatchField(ctx, accountID, domain.ProfileFieldOnboarding, strconv.FormatBool(true))

	m.mu.Lock()
	m.state = OnboardingUserLoaded
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("failed to persist onboarding acknowledgement; will reconcile on next fetch",
			zap.String("account_id", accountID), zap.Error(err))
	}
}

// OnboardingManager keeps one onboarding machine per active session,
// keyed by account id. Machines are discarded on sign-out.
type OnboardingManager struct {
	mu       sync.Mutex
	sessions map[string]*OnboardingMachine
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewOnboardingManager creates a new onboarding manager
func NewOnboardingManager(profiles repository.ProfileRepository, logger *zap.Logger) *OnboardingManager {
	return &OnboardingManager{
		sessions: make(map[string]*OnboardingMachine),
		profiles: profiles,
		logger:   logger,
	}
}

// Load returns the machine for the record's session, creating it on first
// load. An existing machine keeps its state and its cached record; the
// session's view wins over a fresher fetch.
func (g *OnboardingManager) Load(user *domain.UserRecord) *OnboardingMachine {
	g.mu.Lock()
	defer g.mu.Unlock()

	if m, ok := g.sessions[user.ID]; ok {
		return m
	}

	m := newOnboardingMachine(user, g.profiles, g.logger)
	g.sessions[user.ID] = m
	return m
}

// Get returns the machine for an account id if a session is active.
func (g *OnboardingManager) Get(accountID string) (*OnboardingMachine, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.sessions[accountID]
	return m, ok
}

// End discards the session's machine on sign-out.
func (g *OnboardingManager) End(accountID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, accountID)
}
