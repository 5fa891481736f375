package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/accounts"
	"github.com/credeat/credeat-backend/internal/users"
	"github.com/credeat/credeat-backend/pkg/config"
	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minPasswordLength = 8

// RegisterRequest contains the payload required for onboarding a new user.
// Admin accounts are never created through this flow.
type RegisterRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required"`
	FullName string         `json:"full_name" validate:"required"`
	Role     enums.UserRole `json:"role" validate:"required"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the user row and, for wallet-holding roles, the zero-balance
// wallet account in the same transaction.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !req.Role.IsValid() || req.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be student or vendor")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		accountStore := accounts.NewStore(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     strings.TrimSpace(req.FullName),
			Role:         req.Role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if user.Role.HasWallet() {
			accountRole, err := enums.ParseAccountRole(string(user.Role))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "map account role")
			}
			if err := accountStore.Create(ctx, &models.WalletAccount{
				ID:      uuid.New(),
				UserID:  user.ID,
				Role:    accountRole,
				Balance: decimal.Zero,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wallet account")
			}
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}
