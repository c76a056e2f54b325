package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/placement/internal/app/models"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
)

// Config carries the bootstrap administrator credentials
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// DefaultDepartments are created on first start
var DefaultDepartments = []appModels.Department{
	{Code: "CSE", Name: "Computer Science and Engineering"},
	{Code: "ECE", Name: "Electronics and Communication Engineering"},
	{Code: "EEE", Name: "Electrical and Electronics Engineering"},
	{Code: "ME", Name: "Mechanical Engineering"},
	{Code: "CE", Name: "Civil Engineering"},
}

// CreateDefaultData creates the default departments and the first
// administrator if they don't exist. Failures are collected, not fatal.
func CreateDefaultData(ctx context.Context, pool db.Querier, cfg Config, lgr zerolog.Logger) error {
	departmentRepo := appRepos.NewDepartmentRepository(pool)
	userRepo := appRepos.NewUserRepository(pool)

	lgr.Info().Msg("Checking/Creating default data (Departments/Admin)...")
	var finalErr error

	for _, dept := range DefaultDepartments {
		d := dept
		err := departmentRepo.Create(ctx, &d)
		switch {
		case err == nil:
			lgr.Info().Str("code", d.Code).Msg("Default department created")
		case errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		default:
			lgr.Error().Err(err).Str("code", d.Code).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := createAdmin(ctx, userRepo, cfg, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, userRepo *appRepos.UserRepository, cfg Config, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping admin creation")
		return nil
	}

	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.User{
		Email:     email,
		Password:  hash,
		FirstName: "Placement",
		LastName:  "Administrator",
		RoleType:  appModels.RoleAdmin,
		Status:    appModels.UserStatusActive,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}
