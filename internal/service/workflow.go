package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/internal/forms"
	"github.com/mberkey/authflow/internal/repository"
	"go.uber.org/zap"
)

// ErrFormIncomplete is returned when a flow is submitted with an invalid
// form state. The submit control is supposed to be disabled in that case,
// so this is a guard, not a user-facing validation layer.
var ErrFormIncomplete = errors.New("form is incomplete")

// StateObserver receives workflow state transitions. Used for
// instrumentation and tests; may be nil.
type StateObserver func(flow domain.Flow, state domain.FlowState)

// Workflow sequences the authentication flows over the credential and
// profile stores. It is the only place with ordering and failure-routing
// logic; the adapters stay one-shot.
type Workflow struct {
	creds    CredentialStore
	profiles repository.ProfileRepository
	logger   *zap.Logger
	observe  StateObserver
}

// NewWorkflow creates a new authentication workflow controller
func NewWorkflow(creds CredentialStore, profiles repository.ProfileRepository, logger *zap.Logger, observe StateObserver) *Workflow {
	return &Workflow{
		creds:    creds,
		profiles: profiles,
		logger:   logger,
		observe:  observe,
	}
}

func (w *Workflow) transition(flow domain.Flow, state domain.FlowState) {
	if w.observe != nil {
		w.observe(flow, state)
	}
}

// Login runs the login flow: Idle -> Submitting -> Success | Failed. On
// success the profile is NOT fetched here; callers follow up with
// LoadProfile. On failure the flow returns to Idle and resubmission is
// allowed immediately.
func (w *Workflow) Login(ctx context.Context, form forms.LoginForm) (*domain.Session, error) {
	if !form.IsValid() {
		return nil, ErrFormIncomplete
	}

	w.transition(domain.FlowLogin, domain.FlowSubmitting)

	session, err := w.creds.SignIn(ctx, form.EmailValue(), form.PasswordValue())
	if err != nil {
		w.transition(domain.FlowLogin, domain.FlowFailed)
		w.transition(domain.FlowLogin, domain.FlowIdle)
		return nil, err
	}

	w.transition(domain.FlowLogin, domain.FlowSucceeded)
	return session, nil
}

// LoadProfile fetches the profile document for an authenticated session. If
// the account exists but the profile is missing (the registration flow's
// known inconsistency window), a minimal profile is rewritten before
// returning it.
func (w *Workflow) LoadProfile(ctx context.Context, session *domain.Session) (*domain.UserRecord, error) {
	record, err := w.profiles.Fetch(ctx, session.AccountID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.WrapStoreError(domain.StoreNetworkError, err, "failed to fetch profile")
	}

	// Repair: the account authenticated but has no profile document.
	w.logger.Info("rewriting missing profile for authenticated account",
		zap.String("account_id", session.AccountID))

	record = &domain.UserRecord{
		ID:    session.AccountID,
		Email: session.Email,
	}
	if err := w.profiles.Upsert(ctx, session.AccountID, record.ProfileFields()); err != nil {
		return nil, domain.WrapStoreError(domain.StoreNetworkError, err, "failed to rewrite missing profile")
	}
	return record, nil
}

// Register runs the two-phase registration flow: create the account, then
// write the profile document keyed by the new account id. If account
// creation fails the profile write is never attempted. If the profile write
// fails the account is not rolled back; the step-2 error is surfaced and
// the missing profile is repaired on the next successful login.
func (w *Workflow) Register(ctx context.Context, form forms.RegistrationForm) (*domain.Session, error) {
	if !form.IsValid() {
		return nil, ErrFormIncomplete
	}

	w.transition(domain.FlowRegistration, domain.FlowCreatingAccount)

	session, err := w.creds.CreateAccount(ctx, form.EmailValue(), form.PasswordValue(), form.FullNameValue())
	if err != nil {
		w.transition(domain.FlowRegistration, domain.FlowFailed)
		w.transition(domain.FlowRegistration, domain.FlowIdle)
		return nil, err
	}

	w.transition(domain.FlowRegistration, domain.FlowWritingProfile)

	fields := map[string]string{
		domain.ProfileFieldEmail:      session.Email,
		domain.ProfileFieldFullName:   form.FullNameValue(),
		domain.ProfileFieldOnboarding: strconv.FormatBool(false),
	}
	if err := w.profiles.Upsert(ctx, session.AccountID, fields); err != nil {
		w.logger.Warn("account created but profile write failed",
			zap.String("account_id", session.AccountID), zap.Error(err))
		w.transition(domain.FlowRegistration, domain.FlowFailed)
		w.transition(domain.FlowRegistration, domain.FlowIdle)
		return nil, domain.WrapStoreError(domain.StoreNetworkError, err, "failed to write profile")
	}

	w.transition(domain.FlowRegistration, domain.FlowSucceeded)
	return session, nil
}

// SignInWithGoogle runs the federated flow: exchange the credential, then
// check whether a profile document already exists. A missing profile is
// created with the onboarding flag unset; an existing one is left
// untouched so repeat sign-ins never reset the flag.
func (w *Workflow) SignInWithGoogle(ctx context.Context, idToken, accessToken string) (*domain.Session, *domain.UserRecord, error) {
	w.transition(domain.FlowFederated, domain.FlowExchangingCredential)

	session, identity, err := w.creds.SignInWithFederatedCredential(ctx, idToken, accessToken)
	if err != nil {
		w.transition(domain.FlowFederated, domain.FlowFailed)
		w.transition(domain.FlowFederated, domain.FlowIdle)
		return nil, nil, err
	}

	w.transition(domain.FlowFederated, domain.FlowCheckingProfile)

	record, err := w.profiles.Fetch(ctx, session.AccountID)
	if err == nil {
		w.transition(domain.FlowFederated, domain.FlowSucceeded)
		return session, record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		w.transition(domain.FlowFederated, domain.FlowFailed)
		w.transition(domain.FlowFederated, domain.FlowIdle)
		return nil, nil, domain.WrapStoreError(domain.StoreNetworkError, err, "failed to check profile")
	}

	w.transition(domain.FlowFederated, domain.FlowCreatingProfile)

	record = &domain.UserRecord{
		ID:       session.AccountID,
		Email:    identity.Email,
		FullName: identity.FullName,
	}
	if err := w.profiles.Upsert(ctx, session.AccountID, record.ProfileFields()); err != nil {
		w.transition(domain.FlowFederated, domain.FlowFailed)
		w.transition(domain.FlowFederated, domain.FlowIdle)
		return nil, nil, domain.WrapStoreError(domain.StoreNetworkError, err, "failed to create profile")
	}

	w.transition(domain.FlowFederated, domain.FlowSucceeded)
	return session, record, nil
}

// RequestPasswordReset runs the reset flow: Idle -> Submitting -> Success |
// Failed. No local state changes either way.
func (w *Workflow) RequestPasswordReset(ctx context.Context, form forms.PasswordResetForm) error {
	if !form.IsValid() {
		return ErrFormIncomplete
	}

	w.transition(domain.FlowPasswordReset, domain.FlowSubmitting)

	if err := w.creds.RequestPasswordReset(ctx, form.EmailValue()); err != nil {
		w.transition(domain.FlowPasswordReset, domain.FlowFailed)
		w.transition(domain.FlowPasswordReset, domain.FlowIdle)
		return err
	}

	w.transition(domain.FlowPasswordReset, domain.FlowSucceeded)
	return nil
}
