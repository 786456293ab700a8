// internal/handlers/auth.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"
	"stichting-asha/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgCredentialsRequired = "E-mail en wachtwoord zijn verplicht"
	msgInvalidCredentials  = "Ongeldige inloggegevens"
	msgResetRequired       = "Token en wachtwoord zijn verplicht"
	msgInvalidToken        = "Ongeldige of verlopen token"
	msgUserNotFound        = "Gebruiker niet gevonden"
	msgPasswordTooShort    = "Wachtwoord moet minimaal 8 tekens bevatten"
	msgResetDone           = "Wachtwoord is succesvol gereset"
	msgResetRequested      = "Als dit e-mailadres bij ons bekend is, ontvang je een e-mail met verdere instructies."
)

// resetTTL is how long a reset link stays valid.
const resetTTL = time.Hour

type ResetMailer interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string) error
}

type AuthHandler struct {
	users      UserRepository
	resets     ResetRepository
	jwtManager *auth.JWTManager
	mailer     ResetMailer
	activity   ActivityRecorder
	log        logrus.FieldLogger
	resetCost  int
	now        func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func NewAuthHandler(users UserRepository, resets ResetRepository, jwtManager *auth.JWTManager, mailer ResetMailer, activity ActivityRecorder, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		resets:     resets,
		jwtManager: jwtManager,
		mailer:     mailer,
		activity:   activity,
		log:        log,
		resetCost:  auth.ResetCost,
		now:        time.Now,
	}
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgGeneric)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := h.jwtManager.GenerateToken(auth.Session{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		serverError(c, h.log, err, msgGeneric)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Me returns the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.Session(c)
	if s == nil {
		respondError(c, http.StatusUnauthorized, "Niet ingelogd")
		return
	}
	c.JSON(http.StatusOK, s)
}

// ForgotPassword always answers the same way so the endpoint does not
// reveal which addresses exist.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Een geldig e-mailadres is verplicht")
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.log.WithField("email", req.Email).Debug("password reset requested for unknown address")
	case err != nil:
		h.log.WithError(err).Error("failed to look up user for password reset")
	default:
		h.issueReset(ctx, user)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgResetRequested})
}

func (h *AuthHandler) issueReset(ctx context.Context, user *models.User) {
	now := h.now()
	reset := &models.PasswordReset{
		Email:     user.Email,
		Token:     uuid.NewString(),
		Expires:   now.Add(resetTTL),
		CreatedAt: now,
	}
	if err := h.resets.Insert(ctx, reset); err != nil {
		h.log.WithError(err).Error("failed to store password reset")
		return
	}
	if err := h.mailer.SendPasswordReset(ctx, user, reset.Token); err != nil {
		h.log.WithError(err).WithField("email", user.Email).Warn("failed to send password reset mail")
	}
}

// ResetPassword sets a new password with a single-use ticket. Unknown,
// used and expired tokens give the same answer.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, msgResetRequired)
		return
	}

	ctx := c.Request.Context()
	reset, err := h.resets.FindValid(ctx, req.Token, h.now())
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusBadRequest, msgInvalidToken)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgGeneric)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.resetCost)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		respondError(c, http.StatusBadRequest, msgPasswordTooShort)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgGeneric)
		return
	}

	// the lookup above only answers early; the claim decides which
	// request gets to use the ticket
	claimed, err := h.resets.Claim(ctx, req.Token, h.now())
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusBadRequest, msgInvalidToken)
		return
	}
	if err != nil {
		serverError(c, h.log, err, msgGeneric)
		return
	}
	reset = claimed

	if err := h.users.UpdatePassword(ctx, reset.Email, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, msgUserNotFound)
			return
		}
		if rerr := h.resets.Release(context.WithoutCancel(ctx), reset.ID); rerr != nil {
			h.log.WithError(rerr).Warn("failed to release password reset")
		}
		serverError(c, h.log, err, msgGeneric)
		return
	}

	h.activity.Record(ctx, &auth.Session{Email: reset.Email}, models.ActivityUpdate, models.EntityUser, reset.Email, reset.Email)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgResetDone})
}
