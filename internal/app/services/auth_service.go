package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// AuthService handles registration, sign-in and token rotation
type AuthService struct {
	tx             Transactor
	userRepo       UserStore
	tokenRepo      TokenStore
	studentRepo    StudentStore
	departmentRepo DepartmentStore
	jwtService     *auth.JWTService
	clock          Clock
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	tx Transactor,
	userRepo UserStore,
	tokenRepo TokenStore,
	studentRepo StudentStore,
	departmentRepo DepartmentStore,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		tx:             tx,
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		studentRepo:    studentRepo,
		departmentRepo: departmentRepo,
		jwtService:     jwtService,
		logger:         logger,
	}
}

// RegisterStudent creates a student account and its profile in one
// transaction and signs the new user in.
func (s *AuthService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := auth.ValidatePasswordPolicy(req.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	exists, err := s.departmentRepo.Exists(ctx, req.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check department: %w", err)
	}
	if !exists {
		return nil, apperrors.NewValidationError("departmentId", "department does not exist")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	deptID := req.DepartmentID
	user := &models.User{
		Email:        email,
		Password:     hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        helpers.TrimmedPtr(req.Phone),
		RoleType:     models.RoleStudent,
		Status:       models.UserStatusActive,
		DepartmentID: &deptID,
	}
	profile := &models.StudentProfile{
		RollNumber:      strings.ToUpper(strings.TrimSpace(req.RollNumber)),
		DepartmentID:    req.DepartmentID,
		Degree:          strings.TrimSpace(req.Degree),
		BatchYear:       req.BatchYear,
		CGPA:            req.CGPA,
		ActiveBacklogs:  req.ActiveBacklogs,
		PlacementStatus: models.PlacementActive,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		profile.UserID = user.ID
		return s.studentRepo.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("rollNumber", profile.RollNumber).Msg("Student registered")
	return s.issueTokens(ctx, user, &profile.ID)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userId", user.ID).Msg("Password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.clock.now()); err != nil {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to record last login")
	}

	studentID, err := s.studentIDOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, studentID)
}

// RefreshToken rotates a refresh token. A token can be exchanged once; a
// second exchange of the same token fails.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if s.clock.now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	revoked, err := s.tokenRepo.RevokeToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !revoked {
		// Lost a race with a concurrent refresh of the same token.
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrAuthenticationFailed
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	studentID, err := s.studentIDOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, studentID)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Me returns the profile summary of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	studentID, err := s.studentIDOf(ctx, user)
	if err != nil {
		return nil, err
	}
	resp := userResponse(user, studentID)
	return &resp, nil
}

// ChangePassword replaces the user's password and signs out every session.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("currentPassword", "current password is incorrect")
	}
	if err := auth.ValidatePasswordPolicy(req.NewPassword); err != nil {
		return apperrors.NewValidationError("newPassword", err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
	})
}

func (s *AuthService) studentIDOf(ctx context.Context, user *models.User) (*int64, error) {
	if user.RoleType != models.RoleStudent {
		return nil, nil
	}
	profile, err := s.studentRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load student profile: %w", err)
	}
	return &profile.ID, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, studentID *int64) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.RoleType),
	})
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(pair.ExpiresIn),
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
		},
		User: userResponse(user, studentID),
	}, nil
}

func userResponse(user *models.User, studentID *int64) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         string(user.RoleType),
		Status:       string(user.Status),
		DepartmentID: user.DepartmentID,
		StudentID:    studentID,
	}
}
