package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type resetUsers struct {
	UserStore
	users map[string]*models.User
}

func (s *resetUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *resetUsers) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	for _, u := range s.users {
		if u.ID == userID {
			u.Password = hash
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

type resetTokens struct {
	rows map[string]*models.PasswordResetToken
}

func (s *resetTokens) Create(ctx context.Context, t *models.PasswordResetToken) error {
	t.ID = int64(len(s.rows) + 1)
	s.rows[t.TokenHash] = t
	return nil
}

func (s *resetTokens) GetForUpdate(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	if t, ok := s.rows[tokenHash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.ErrTokenNotFound
}

func (s *resetTokens) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	for _, t := range s.rows {
		if t.ID == id {
			t.UsedAt = &at
			return nil
		}
	}
	return apperrors.ErrTokenRevoked
}

func (s *resetTokens) DeleteByUserID(ctx context.Context, userID int64) error {
	for k, t := range s.rows {
		if t.UserID == userID {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *resetTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range s.rows {
		if t.ExpiresAt.Before(now) {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

type revokingTokens struct {
	TokenStore
	revoked []int64
}

func (s *revokingTokens) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

type capturedMail struct {
	to, subject, message string
}

type captureMailer struct {
	sent []capturedMail
}

func (m *captureMailer) SendNotification(toEmail, toName, subject, message string) error {
	m.sent = append(m.sent, capturedMail{to: toEmail, subject: subject, message: message})
	return nil
}

type resetFixture struct {
	svc    *PasswordResetService
	users  *resetUsers
	tokens *resetTokens
	auth   *revokingTokens
	mailer *captureMailer
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost

	f := &resetFixture{
		users: &resetUsers{users: map[string]*models.User{
			"asha@college.edu": {ID: 20, Email: "asha@college.edu", FirstName: "Asha", LastName: "Rao", Status: models.UserStatusActive},
			"ravi@college.edu": {ID: 21, Email: "ravi@college.edu", Status: models.UserStatusSuspended},
		}},
		tokens: &resetTokens{rows: map[string]*models.PasswordResetToken{}},
		auth:   &revokingTokens{},
		mailer: &captureMailer{},
	}
	f.svc = NewPasswordResetService(newMemDB(), f.users, f.tokens, f.auth, f.mailer,
		"https://portal.example.edu/reset", zerolog.Nop())
	f.svc.clock = testClock
	f.svc.newToken = func() string { return "reset-token-1" }
	return f
}

func TestRequestReset_MailsLinkAndStoresDigestOnly(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), &dto.ForgotPasswordRequest{Email: " Asha@College.edu "}))

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "asha@college.edu", f.mailer.sent[0].to)
	assert.True(t, strings.Contains(f.mailer.sent[0].message, "https://portal.example.edu/reset?token=reset-token-1"))

	require.Len(t, f.tokens.rows, 1)
	stored, ok := f.tokens.rows[hashResetToken("reset-token-1")]
	require.True(t, ok)
	assert.NotEqual(t, "reset-token-1", stored.TokenHash)
	assert.Equal(t, testNow.Add(DefaultResetTokenTTL), stored.ExpiresAt)
}

func TestRequestReset_UnknownAndInactiveAccountsAreSilent(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), &dto.ForgotPasswordRequest{Email: "nobody@college.edu"}))
	require.NoError(t, f.svc.RequestReset(context.Background(), &dto.ForgotPasswordRequest{Email: "ravi@college.edu"}))

	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.tokens.rows)
}

func TestResetPassword_RedeemsOnceAndRevokesSessions(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), &dto.ForgotPasswordRequest{Email: "asha@college.edu"}))

	req := &dto.ResetPasswordRequest{Token: "reset-token-1", NewPassword: "newSecret9"}
	require.NoError(t, f.svc.ResetPassword(context.Background(), req))

	assert.True(t, auth.CheckPassword(f.users.users["asha@college.edu"].Password, "newSecret9"))
	assert.Equal(t, []int64{20}, f.auth.revoked)

	err := f.svc.ResetPassword(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestResetPassword_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		pass    string
		advance time.Duration
		want    error
	}{
		{name: "unknown token", token: "other", pass: "newSecret9", want: apperrors.ErrTokenInvalid},
		{name: "expired token", token: "reset-token-1", pass: "newSecret9", advance: 2 * time.Hour, want: apperrors.ErrTokenExpired},
		{name: "weak password", token: "reset-token-1", pass: "abcdefgh", want: apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResetFixture(t)
			require.NoError(t, f.svc.RequestReset(context.Background(), &dto.ForgotPasswordRequest{Email: "asha@college.edu"}))
			f.svc.clock = func() time.Time { return testNow.Add(tt.advance) }

			err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Token: tt.token, NewPassword: tt.pass})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.auth.revoked)
		})
	}
}

func TestPurgeExpired(t *testing.T) {
	f := newResetFixture(t)
	f.tokens.rows["a"] = &models.PasswordResetToken{ID: 1, TokenHash: "a", ExpiresAt: testNow.Add(-time.Minute)}
	f.tokens.rows["b"] = &models.PasswordResetToken{ID: 2, TokenHash: "b", ExpiresAt: testNow.Add(time.Minute)}

	n, err := f.svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, f.tokens.rows, "b")
}
