package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/internal/repository"
	"github.com/mberkey/authflow/internal/utils"
	"go.uber.org/zap"
)

const federatedProviderGoogle = "google"

// credentialStore implements CredentialStore over the accounts table
type credentialStore struct {
	accounts          repository.AccountRepository
	resetTokens       repository.ResetTokenRepository
	federated         FederatedVerifier
	jwtManager        *utils.JWTManager
	bcryptCost        int
	minPasswordLength int
	resetTokenExpiry  time.Duration
	logger            *zap.Logger
}

// NewCredentialStore creates a new credential store adapter
func NewCredentialStore(
	accounts repository.AccountRepository,
	resetTokens repository.ResetTokenRepository,
	federated FederatedVerifier,
	jwtManager *utils.JWTManager,
	bcryptCost int,
	minPasswordLength int,
	resetTokenExpiry time.Duration,
	logger *zap.Logger,
) CredentialStore {
	return &credentialStore{
		accounts:          accounts,
		resetTokens:       resetTokens,
		federated:         federated,
		jwtManager:        jwtManager,
		bcryptCost:        bcryptCost,
		minPasswordLength: minPasswordLength,
		resetTokenExpiry:  resetTokenExpiry,
		logger:            logger,
	}
}

// SignIn authenticates an account by email and password
func (s *credentialStore) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthError(domain.AuthInvalidCredentials, "invalid email or password")
		}
		return nil, domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
	}

	if account.PasswordHash == "" || !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, domain.NewAuthError(domain.AuthInvalidCredentials, "invalid email or password")
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		// Not fatal for the sign-in itself
		s.logger.Warn("failed to update last login", zap.String("account_id", account.ID), zap.Error(err))
	}

	return s.newSession(account)
}

// CreateAccount registers a new account with the identity provider. The
// returned session carries the freshly minted account id; no profile
// document exists for it yet.
func (s *credentialStore) CreateAccount(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	email = utils.SanitizeEmail(email)
	if !utils.ValidateEmail(email) {
		return nil, domain.NewAuthError(domain.AuthOther, "invalid email format")
	}
	if len(password) < s.minPasswordLength {
		return nil, domain.NewAuthError(domain.AuthWeakPassword, "password must be at least %d characters long", s.minPasswordLength)
	}

	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, domain.WrapAuthError(domain.AuthOther, err, "failed to hash password")
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.WrapAuthError(domain.AuthEmailInUse, err, "account with email %s already exists", email)
		}
		return nil, domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
	}

	return s.newSession(account)
}

// SignInWithFederatedCredential exchanges a federated identity assertion for
// a local session, provisioning an account on first sign-in.
func (s *credentialStore) SignInWithFederatedCredential(ctx context.Context, idToken, accessToken string) (*domain.Session, *domain.FederatedIdentity, error) {
	identity, err := s.federated.Verify(ctx, idToken, accessToken)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetByProviderSubject(ctx, federatedProviderGoogle, identity.Subject)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
		}

		account = &domain.Account{
			Email:           utils.SanitizeEmail(identity.Email),
			FullName:        identity.FullName,
			Provider:        federatedProviderGoogle,
			ProviderSubject: identity.Subject,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return nil, nil, domain.WrapAuthError(domain.AuthEmailInUse, err, "email %s already registered with a password", account.Email)
			}
			return nil, nil, domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
		}
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("account_id", account.ID), zap.Error(err))
	}

	session, err := s.newSession(account)
	if err != nil {
		return nil, nil, err
	}
	return session, identity, nil
}

// SignOut clears the active session. Sessions are stateless tokens, so
// teardown cannot fail remotely; anything local is logged and absorbed.
func (s *credentialStore) SignOut(ctx context.Context, accountID string) error {
	s.logger.Info("session signed out", zap.String("account_id", accountID))
	return nil
}

// RequestPasswordReset mints a single-use reset token for the account.
// Delivery transport is out of scope; the token is logged for the operator.
func (s *credentialStore) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAuthError(domain.AuthUnknownEmail, "no account for email %s", email)
		}
		return domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
	}

	token := uuid.New().String()
	if err := s.resetTokens.Create(ctx, token, account.ID, s.resetTokenExpiry); err != nil {
		return domain.WrapAuthError(domain.AuthNetworkError, err, "failed to issue reset token")
	}

	s.logger.Info("password reset token issued",
		zap.String("account_id", account.ID),
		zap.String("token", token),
		zap.Duration("ttl", s.resetTokenExpiry),
	)
	return nil
}

// ConfirmPasswordReset redeems a reset token and replaces the account's
// password. The token is consumed whether or not the update succeeds, so a
// failed attempt requires requesting a fresh one.
func (s *credentialStore) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < s.minPasswordLength {
		return domain.NewAuthError(domain.AuthWeakPassword, "password must be at least %d characters long", s.minPasswordLength)
	}

	accountID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAuthError(domain.AuthInvalidCredentials, "reset token is invalid or expired")
		}
		return domain.WrapAuthError(domain.AuthNetworkError, err, "failed to redeem reset token")
	}

	passwordHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return domain.WrapAuthError(domain.AuthOther, err, "failed to hash password")
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, passwordHash); err != nil {
		return domain.WrapAuthError(domain.AuthNetworkError, err, "identity provider unavailable")
	}

	s.logger.Info("password reset completed", zap.String("account_id", accountID))
	return nil
}

// ValidateToken validates a session access token
func (s *credentialStore) ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, domain.WrapAuthError(domain.AuthInvalidCredentials, err, "invalid or expired token")
	}
	return claims, nil
}

// CurrentSessionAccountID reports whether a session is active for the token
func (s *credentialStore) CurrentSessionAccountID(ctx context.Context, token string) (string, bool) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return "", false
	}
	return claims.AccountID, true
}

func (s *credentialStore) newSession(account *domain.Account) (*domain.Session, error) {
	token, err := s.jwtManager.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, domain.WrapAuthError(domain.AuthOther, err, "failed to issue session token")
	}

	return &domain.Session{
		AccountID:   account.ID,
		Email:       account.Email,
		AccessToken: token,
		ExpiresIn:   s.jwtManager.GetAccessTokenExpiry(),
	}, nil
}
