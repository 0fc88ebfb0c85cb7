package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/internal/dto"
	"github.com/mberkey/authflow/internal/service"
)

// AuthHandler exposes the workflow hooks to the presentation host: one
// submit endpoint per flow, plus the onboarding dismissal signal.
type AuthHandler struct {
	workflow   *service.Workflow
	creds      service.CredentialStore
	onboarding *service.OnboardingManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(workflow *service.Workflow, creds service.CredentialStore, onboarding *service.OnboardingManager) *AuthHandler {
	return &AuthHandler{
		workflow:   workflow,
		creds:      creds,
		onboarding: onboarding,
	}
}

// Login handles the login flow submit
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login form"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	session, err := h.workflow.Login(c.Request.Context(), req.Form())
	if err != nil {
		writeFlowError(c, err)
		return
	}

	record, err := h.workflow.LoadProfile(c.Request.Context(), session)
	if err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse(session, record))
}

// Register handles the registration flow submit
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration form"
// @Success 201 {object} dto.AuthResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	session, err := h.workflow.Register(c.Request.Context(), req.Form())
	if err != nil {
		writeFlowError(c, err)
		return
	}

	record := &domain.UserRecord{
		ID:       session.AccountID,
		Email:    session.Email,
		FullName: req.Form().FullNameValue(),
	}

	c.JSON(http.StatusCreated, h.authResponse(session, record))
}

// Google handles the federated sign-in flow submit
// @Summary Sign in with a Google credential
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleSignInRequest true "Federated credential"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	session, record, err := h.workflow.SignInWithGoogle(c.Request.Context(), req.IDToken, req.AccessToken)
	if err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse(session, record))
}

// PasswordReset handles the password reset flow submit
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Reset form"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/password-reset [post]
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.workflow.RequestPasswordReset(c.Request.Context(), req.Form()); err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password reset requested",
	})
}

// ConfirmPasswordReset handles redeeming a reset token
// @Summary Complete a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.creds.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password updated",
	})
}

// Logout handles sign-out
// @Summary Sign out of the current session
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID := c.GetString("account_id")

	// Teardown failures are non-fatal; sign-out always succeeds locally.
	_ = h.creds.SignOut(c.Request.Context(), accountID)
	h.onboarding.End(accountID)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Signed out",
	})
}

// GetMe handles fetching the current user's profile
// @Summary Get the current user's profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	session := &domain.Session{
		AccountID: c.GetString("account_id"),
		Email:     c.GetString("email"),
	}

	record, err := h.workflow.LoadProfile(c.Request.Context(), session)
	if err != nil {
		writeFlowError(c, err)
		return
	}

	machine := h.onboarding.Load(record)
	c.JSON(http.StatusOK, dto.MeResponse{
		User:           userInfo(machine.User()),
		ShowOnboarding: machine.ShouldShowOnboarding(),
	})
}

// DismissOnboarding handles the get-started signal from the onboarding
// presentation
// @Summary Acknowledge the onboarding sequence
// @Tags onboarding
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /onboarding/dismiss [post]
func (h *AuthHandler) DismissOnboarding(c *gin.Context) {
	accountID := c.GetString("account_id")

	machine, ok := h.onboarding.Get(accountID)
	if !ok {
		// Session state was lost (e.g. restart); reload the profile and
		// replay the shown transition so the dismissal still lands.
		session := &domain.Session{AccountID: accountID, Email: c.GetString("email")}
		record, err := h.workflow.LoadProfile(c.Request.Context(), session)
		if err != nil {
			writeFlowError(c, err)
			return
		}
		machine = h.onboarding.Load(record)
		machine.ShouldShowOnboarding()
	}

	machine.Dismiss(c.Request.Context())

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Onboarding acknowledged",
	})
}

func (h *AuthHandler) authResponse(session *domain.Session, record *domain.UserRecord) dto.AuthResponse {
	machine := h.onboarding.Load(record)
	return dto.AuthResponse{
		AccessToken:    session.AccessToken,
		TokenType:      "Bearer",
		ExpiresIn:      session.ExpiresIn,
		User:           userInfo(machine.User()),
		ShowOnboarding: machine.ShouldShowOnboarding(),
	}
}

func userInfo(record *domain.UserRecord) dto.UserInfo {
	return dto.UserInfo{
		ID:                record.ID,
		Email:             record.Email,
		FullName:          record.FullName,
		HasSeenOnboarding: record.HasSeenOnboarding,
	}
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}

// writeFlowError maps workflow failures onto HTTP statuses. The error's
// message is surfaced verbatim.
func writeFlowError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrFormIncomplete) {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "Form incomplete",
			Message: err.Error(),
		})
		return
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		status := http.StatusBadRequest
		switch authErr.Code {
		case domain.AuthInvalidCredentials:
			status = http.StatusUnauthorized
		case domain.AuthEmailInUse:
			status = http.StatusConflict
		case domain.AuthUnknownEmail:
			status = http.StatusNotFound
		case domain.AuthNetworkError:
			status = http.StatusBadGateway
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   string(authErr.Code),
			Message: authErr.Message,
		})
		return
	}

	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		status := http.StatusBadGateway
		if storeErr.Code == domain.StoreNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   string(storeErr.Code),
			Message: storeErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
