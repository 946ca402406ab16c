package seed

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/presentia/backend/internal/app/models"
	appRepos "github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@presentia.io"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData seeds the single SYSTEM_ADMIN account on first boot
// and, when SEED_DEMO_DATA is set, an idempotent demo organisation with a
// department and its admin accounts.
//
// The platform is unusable without the system admin: every other account
// descends from it through the creation hierarchy.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	if err := seedSystemAdmin(ctx, userRepo, lgr); err != nil {
		return err
	}

	if os.Getenv("SEED_DEMO_DATA") != "" {
		return seedDemoData(ctx, dbPool, userRepo, lgr)
	}
	return nil
}

func seedSystemAdmin(ctx context.Context, userRepo *appRepos.UserRepository, lgr zerolog.Logger) error {
	exists, err := userRepo.ExistsSystemAdmin(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for system admin")
		return err
	}
	if exists {
		lgr.Info().Msg("System admin already exists, skipping seed")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		lgr.Warn().Msg("ADMIN_PASSWORD not set, seeding system admin with the default password")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Name:     "System Administrator",
		Email:    email,
		Password: hashed,
		Role:     models.RoleSystemAdmin,
		IsActive: true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating system admin")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Str("email", email).Msg("System admin created")
	return nil
}

// seedDemoData creates a demo organisation, department and the two admin
// accounts below the system admin. Already-existing rows are tolerated so
// repeated boots stay idempotent.
func seedDemoData(ctx context.Context, dbPool *pgxpool.Pool, userRepo *appRepos.UserRepository, lgr zerolog.Logger) error {
	organisationRepo := appRepos.NewOrganisationRepository(dbPool)
	departmentRepo := appRepos.NewDepartmentRepository(dbPool)

	lgr.Info().Msg("Checking/Creating demo data...")
	var finalErr error

	organisation := &models.Organisation{
		Name:    "Demo University",
		Address: "1 Demo Street",
		Contact: "demo@presentia.io",
	}
	err := organisationRepo.Create(ctx, organisation)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrAlreadyExists):
		existing, errGet := organisationRepo.GetAll(ctx)
		if errGet != nil {
			lgr.Error().Err(errGet).Msg("Error loading organisations for demo seed")
			return errors.Join(finalErr, errGet)
		}
		for _, o := range existing {
			if o.Contact == organisation.Contact {
				organisation = o
				break
			}
		}
	default:
		lgr.Error().Err(err).Msg("Error creating demo organisation")
		return errors.Join(finalErr, err)
	}

	department := &models.Department{
		OrganisationID: organisation.ID,
		Name:           "Computer Science",
		TotalSemesters: 8,
	}
	err = departmentRepo.Create(ctx, department)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrAlreadyExists):
		existing, errGet := departmentRepo.GetByOrganisationID(ctx, organisation.ID)
		if errGet != nil {
			lgr.Error().Err(errGet).Msg("Error loading departments for demo seed")
			return errors.Join(finalErr, errGet)
		}
		for _, d := range existing {
			if d.Name == department.Name {
				department = d
				break
			}
		}
	default:
		lgr.Error().Err(err).Msg("Error creating demo department")
		return errors.Join(finalErr, err)
	}

	demoUsers := []*models.User{
		{
			Name:           "Demo Org Admin",
			Email:          "orgadmin@presentia.io",
			Role:           models.RoleOrgAdmin,
			OrganisationID: &organisation.ID,
		},
		{
			Name:           "Demo Dept Admin",
			Email:          "deptadmin@presentia.io",
			Role:           models.RoleDeptAdmin,
			OrganisationID: &organisation.ID,
			DepartmentID:   &department.ID,
		},
	}

	hashed, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing demo password")
		return errors.Join(finalErr, err)
	}

	for _, user := range demoUsers {
		user.Password = hashed
		user.IsActive = true
		err := userRepo.Create(ctx, user)
		if err != nil && !errors.Is(err, apperrors.ErrAlreadyExists) && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Int64("organisationID", organisation.ID).Int64("departmentID", department.ID).Msg("Demo data ready")
	}
	return finalErr
}
