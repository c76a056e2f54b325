package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	base
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(pool db.Querier) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{base: newBase(pool)}
}

// Create stores a reset token digest for userID
func (r *PasswordResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token_hash", "expires_at").
		Values(t.UserID, t.TokenHash, t.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt)
	return translate(err, nil, nil)
}

// GetForUpdate locks the token row with the given digest. Must run inside a
// transaction.
func (r *PasswordResetTokenRepository) GetForUpdate(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	if !db.InTransaction(ctx) {
		return nil, fmt.Errorf("password reset token lock requires a transaction")
	}

	sql, args, err := r.sb.Select("id", "user_id", "token_hash", "expires_at", "used_at", "created_at").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token_hash": tokenHash}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	var t models.PasswordResetToken
	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, translate(err, apperrors.ErrTokenNotFound, nil)
	}
	return &t, nil
}

// MarkUsed redeems a token so it cannot be used again
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	n, err := r.exec(ctx, r.sb.Update("password_reset_tokens").
		Set("used_at", at).
		Where(squirrel.Eq{"id": id, "used_at": nil}), "mark reset token used")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// DeleteByUserID removes every outstanding token of a user
func (r *PasswordResetTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, r.sb.Delete("password_reset_tokens").
		Where(squirrel.Eq{"user_id": userID}), "delete user reset tokens")
	return err
}

// DeleteExpired removes tokens that expired before now
func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, r.sb.Delete("password_reset_tokens").
		Where(squirrel.Lt{"expires_at": now}), "delete expired reset tokens")
}
