package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/counterline/counterline-backend/pkg/auth"
	"github.com/counterline/counterline-backend/pkg/auth/session"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	"github.com/counterline/counterline-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	// UnknownBusinessName is recorded on orders placed while no client exists.
	UnknownBusinessName = "Unknown"

	minPin = 1000
	maxPin = 9999
)

var (
	ErrClientNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	ErrUserNameTaken    = pkgerrors.New(pkgerrors.CodeConflict, "client with this username already exists")
	ErrClientRegistered = pkgerrors.New(pkgerrors.CodeConflict, "a client is already registered")
)

// Service manages the single business account.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*ClientDTO, error)
	Login(ctx context.Context, userName, password string) (*LoginResult, error)
	ToggleActive(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error)
	UpdateConvenienceFee(ctx context.Context, clientID uuid.UUID, fee decimal.Decimal) (*ClientDTO, error)
	Current(ctx context.Context) (*FeeConfig, error)
	PublicInfo(ctx context.Context) (*PublicInfoDTO, error)
	VerifyPin(ctx context.Context, pin int) (bool, error)
}

// RegisterInput holds the fields needed to create the business account.
type RegisterInput struct {
	BusinessName   string
	UserName       string
	Password       string
	Pin            int
	ConvenienceFee decimal.Decimal
}

type clientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	FindCurrent(ctx context.Context) (*models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByUserName(ctx context.Context, userName string) (*models.Client, error)
	CountWithPin(ctx context.Context, pin int) (int64, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (int64, error)
	UpdateConvenienceFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (int64, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionStarter interface {
	Start(ctx context.Context, accessID string, subjectID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build a clients service.
type ServiceParams struct {
	Repo           clientRepository
	SessionManager sessionStarter
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo     clientRepository
	sessions sessionStarter
	jwtCfg   config.JWTConfig
	pwdCfg   config.PasswordConfig
}

// NewService constructs a clients service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		pwdCfg:   params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*ClientDTO, error) {
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.UserName = strings.TrimSpace(input.UserName)
	if input.BusinessName == "" || input.UserName == "" || input.Password == "" || input.Pin == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "businessName, userName, password and pin are required")
	}
	if input.Pin < minPin || input.Pin > maxPin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pin must be a 4-digit number")
	}
	if input.ConvenienceFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "convenienceFee must be zero or greater")
	}

	if _, err := s.repo.FindByUserName(ctx, input.UserName); err == nil {
		return nil, ErrUserNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	if _, err := s.repo.FindCurrent(ctx); err == nil {
		return nil, ErrClientRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}

	hash, err := security.HashPassword(input.Password, s.pwdCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	client := &models.Client{
		BusinessName:   input.BusinessName,
		UserName:       input.UserName,
		PasswordHash:   hash,
		Pin:            input.Pin,
		ConvenienceFee: input.ConvenienceFee.Round(2),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrClientRegistered
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert client")
	}
	dto := FromModel(client)
	return &dto, nil
}

func (s *service) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userName and password are required")
	}

	client, err := s.repo.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	if client.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, client.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, client.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		SubjectID: client.ID,
		Role:      enums.RoleClient,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.sessions.Start(ctx, accessID, client.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResult{Token: token, Client: FromModel(client)}, nil
}

func (s *service) ToggleActive(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error) {
	rows, err := s.repo.ToggleActive(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: toggle client")
	}
	if rows == 0 {
		return nil, ErrClientNotFound
	}
	return s.load(ctx, clientID)
}

func (s *service) UpdateConvenienceFee(ctx context.Context, clientID uuid.UUID, fee decimal.Decimal) (*ClientDTO, error) {
	if fee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "convenienceFee must be zero or greater")
	}
	rows, err := s.repo.UpdateConvenienceFee(ctx, clientID, fee.Round(2))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update convenience fee")
	}
	if rows == 0 {
		return nil, ErrClientNotFound
	}
	return s.load(ctx, clientID)
}

// Current returns the live fee configuration, or nil when no client is registered.
func (s *service) Current(ctx context.Context) (*FeeConfig, error) {
	client, err := s.repo.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load client")
	}
	return &FeeConfig{
		ClientID:       client.ID,
		BusinessName:   client.BusinessName,
		ConvenienceFee: client.ConvenienceFee,
	}, nil
}

func (s *service) PublicInfo(ctx context.Context) (*PublicInfoDTO, error) {
	client, err := s.repo.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load client")
	}
	return &PublicInfoDTO{BusinessName: client.BusinessName, IsActive: client.IsActive}, nil
}

// VerifyPin reports whether a non-deleted client holds the pin.
func (s *service) VerifyPin(ctx context.Context, pin int) (bool, error) {
	if pin < minPin || pin > maxPin {
		return false, nil
	}
	n, err := s.repo.CountWithPin(ctx, pin)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: verify pin")
	}
	return n > 0, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load client")
	}
	dto := FromModel(client)
	return &dto, nil
}
