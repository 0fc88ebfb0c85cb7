package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mberkey/authflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOnboardingShownExactlyOnce(t *testing.T) {
	profiles := newFakeProfileRepo()
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1", Email: "tee@example.com"}
	machine := manager.Load(user)

	assert.True(t, machine.ShouldShowOnboarding())
	assert.False(t, machine.ShouldShowOnboarding())
	assert.False(t, machine.ShouldShowOnboarding())
}

func TestOnboardingNeverShownWhenFlagSet(t *testing.T) {
	profiles := newFakeProfileRepo()
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1", HasSeenOnboarding: true}
	machine := manager.Load(user)

	assert.False(t, machine.ShouldShowOnboarding())
	assert.Zero(t, profiles.patchCalls)
}

func TestDismissFlipsFlagAndPatchesOnce(t *testing.T) {
	profiles := newFakeProfileRepo()
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1"}
	machine := manager.Load(user)
	require.True(t, machine.ShouldShowOnboarding())

	machine.Dismiss(context.Background())

	assert.True(t, user.HasSeenOnboarding)
	assert.Equal(t, 1, profiles.patchCalls)
	assert.Equal(t, "true", profiles.docs["acc-1"][domain.ProfileFieldOnboarding])

	// Repeat dismissals are absorbed
	machine.Dismiss(context.Background())
	assert.Equal(t, 1, profiles.patchCalls)
}

func TestDismissWithoutShowIsNoop(t *testing.T) {
	profiles := newFakeProfileRepo()
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1"}
	machine := manager.Load(user)

	machine.Dismiss(context.Background())

	assert.False(t, user.HasSeenOnboarding)
	assert.Zero(t, profiles.patchCalls)
}

func TestDismissPatchFailureKeepsFlagTrue(t *testing.T) {
	profiles := newFakeProfileRepo()
	profiles.failPatch = errors.New("store down")
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1"}
	machine := manager.Load(user)
	require.True(t, machine.ShouldShowOnboarding())

	machine.Dismiss(context.Background())

	// No rollback: the user does not see onboarding again this session
	assert.True(t, user.HasSeenOnboarding)
	assert.Equal(t, 1, profiles.patchCalls)
	assert.False(t, machine.ShouldShowOnboarding())
}

func TestManagerKeepsMachinePerSession(t *testing.T) {
	profiles := newFakeProfileRepo()
	manager := NewOnboardingManager(profiles, zap.NewNop())

	user := &domain.UserRecord{ID: "acc-1"}
	first := manager.Load(user)
	require.True(t, first.ShouldShowOnboarding())

	// A later load for the same account keeps the session's state
	again := manager.Load(&domain.UserRecord{ID: "acc-1"})
	assert.Same(t, first, again)
	assert.False(t, again.ShouldShowOnboarding())

	// Sign-out discards the machine; a new session starts fresh
	manager.End("acc-1")
	fresh := manager.Load(&domain.UserRecord{ID: "acc-1"})
	assert.True(t, fresh.ShouldShowOnboarding())
}
