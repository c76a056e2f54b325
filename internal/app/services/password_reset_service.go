package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/email"
)

// DefaultResetTokenTTL is how long a mailed reset link stays valid
const DefaultResetTokenTTL = time.Hour

// PasswordResetService runs the forgot-password flow
type PasswordResetService struct {
	tx        Transactor
	userRepo  UserStore
	resetRepo PasswordResetStore
	tokenRepo TokenStore
	mailer    email.EmailService
	resetURL  string
	ttl       time.Duration
	clock     Clock
	newToken  func() string
	logger    zerolog.Logger
}

// NewPasswordResetService creates a new PasswordResetService. resetURL is the
// page the mailed link points to; the token is appended as ?token=.
func NewPasswordResetService(
	tx Transactor,
	userRepo UserStore,
	resetRepo PasswordResetStore,
	tokenRepo TokenStore,
	mailer email.EmailService,
	resetURL string,
	logger zerolog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		tx:        tx,
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		resetURL:  resetURL,
		ttl:       DefaultResetTokenTTL,
		newToken:  func() string { return uuid.NewString() },
		logger:    logger,
	}
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestReset mails a reset link to an active account. Unknown or inactive
// addresses succeed silently so the endpoint does not reveal accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("email", addr).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive() {
		s.logger.Info().Int64("userId", user.ID).Msg("Password reset requested for inactive account")
		return nil
	}

	token := s.newToken()
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// A new request invalidates earlier links.
		if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		return s.resetRepo.Create(ctx, &models.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: hashResetToken(token),
			ExpiresAt: s.clock.now().Add(s.ttl),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer == nil {
		s.logger.Warn().Int64("userId", user.ID).Msg("No mailer configured, reset link not sent")
		return nil
	}
	message := fmt.Sprintf("Use this link within %s to choose a new password: %s?token=%s",
		s.ttl, s.resetURL, token)
	if err := s.mailer.SendNotification(user.Email, user.FullName(), "Reset your password", message); err != nil {
		s.logger.Error().Err(err).Int64("userId", user.ID).Msg("Failed to send password reset mail")
	}
	return nil
}

// ResetPassword redeems a token, sets the new password and signs out every
// session of the user.
func (s *PasswordResetService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := auth.ValidatePasswordPolicy(req.NewPassword); err != nil {
		return apperrors.NewValidationError("newPassword", err.Error())
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		now := s.clock.now()
		t, err := s.resetRepo.GetForUpdate(ctx, hashResetToken(req.Token))
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) {
				return apperrors.ErrTokenInvalid
			}
			return err
		}
		if t.UsedAt != nil {
			return apperrors.ErrTokenRevoked
		}
		if !now.Before(t.ExpiresAt) {
			return apperrors.ErrTokenExpired
		}

		if err := s.resetRepo.MarkUsed(ctx, t.ID, now); err != nil {
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, t.UserID, hash); err != nil {
			return err
		}
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, t.UserID); err != nil {
			return err
		}
		s.logger.Info().Int64("userId", t.UserID).Msg("Password reset completed")
		return nil
	})
}

// PurgeExpired deletes reset tokens past their expiry.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.resetRepo.DeleteExpired(ctx, s.clock.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("Purged expired password reset tokens")
	}
	return n, nil
}
