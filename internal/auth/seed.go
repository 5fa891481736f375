package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/accounts"
	"github.com/credeat/credeat-backend/internal/users"
	"github.com/credeat/credeat-backend/pkg/config"
	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/security"
)

// SeedDevUsers bootstraps the admin and the demo vendor in dev environments.
// Password hashes are computed here because seeds ship as Go code, not SQL.
// Existing rows are left untouched, so reruns are safe.
func SeedDevUsers(ctx context.Context, client *db.Client, cfg *config.Config, logg *logger.Logger) error {
	if !cfg.App.IsDev() {
		return nil
	}

	seeds := []struct {
		email     string
		password  string
		fullName  string
		role      enums.UserRole
		walletFor *enums.AccountRole
	}{
		{
			email:    cfg.Seed.AdminEmail,
			password: cfg.Seed.AdminPassword,
			fullName: cfg.Seed.AdminFullName,
			role:     enums.UserRoleAdmin,
		},
		{
			email:     cfg.Seed.VendorEmail,
			password:  cfg.Seed.VendorPassword,
			fullName:  cfg.Seed.VendorFullName,
			role:      enums.UserRoleVendor,
			walletFor: func() *enums.AccountRole { r := enums.AccountRoleVendor; return &r }(),
		},
	}

	for _, seed := range seeds {
		email := strings.ToLower(strings.TrimSpace(seed.email))
		if email == "" || seed.password == "" {
			continue
		}

		passwordHash, err := security.HashPassword(seed.password, cfg.Password)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash seed password")
		}

		err = client.WithTx(ctx, func(tx *gorm.DB) error {
			userRepo := users.NewRepository(tx)
			if _, err := userRepo.FindByEmail(ctx, email); err == nil {
				return nil
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			user, err := userRepo.Create(ctx, users.CreateUserDTO{
				Email:        email,
				PasswordHash: passwordHash,
				FullName:     seed.fullName,
				Role:         seed.role,
			})
			if err != nil {
				return err
			}

			if seed.walletFor != nil {
				if err := accounts.NewStore(tx).Create(ctx, &models.WalletAccount{
					ID:      uuid.New(),
					UserID:  user.ID,
					Role:    *seed.walletFor,
					Balance: decimal.Zero,
				}); err != nil {
					return err
				}
			}

			logg.Info(logg.WithFields(ctx, map[string]any{
				"email": email,
				"role":  string(seed.role),
			}), "seeded user")
			return nil
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed user")
		}
	}
	return nil
}
