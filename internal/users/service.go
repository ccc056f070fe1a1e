package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgAuth "github.com/counterline/counterline-backend/pkg/auth"
	"github.com/counterline/counterline-backend/pkg/auth/session"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	pkgerrors "github.com/counterline/counterline-backend/pkg/errors"
	redisclient "github.com/counterline/counterline-backend/pkg/redis"
	"github.com/counterline/counterline-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidOTPMessage = "invalid or expired otp"
	quotaWindow       = 24 * time.Hour
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

var (
	ErrInvalidPhone = pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number")
	ErrOTPRequired  = pkgerrors.New(pkgerrors.CodeValidation, "phone number and otp are required")
	ErrUserNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	ErrDailyQuota   = pkgerrors.New(pkgerrors.CodeRateLimit, "maximum otp requests reached for today")
)

// Service handles phone based sign-in for end users.
type Service interface {
	SendOTP(ctx context.Context, phoneNo string) (*OTPResult, error)
	ResendOTP(ctx context.Context, phoneNo string) (*OTPResult, error)
	VerifyOTP(ctx context.Context, phoneNo, code string) (*VerifyResult, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, phoneNo string) (*models.User, error)
	FindByPhone(ctx context.Context, phoneNo string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPCodeKey(phone string) string
	OTPCooldownKey(phone string) string
	OTPQuotaKey(phone, day string) string
}

type sessionManager interface {
	Start(ctx context.Context, accessID string, subjectID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           userRepository
	Store          otpStore
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
	Clock          func() time.Time
}

type service struct {
	repo     userRepository
	store    otpStore
	sessions sessionManager
	jwtCfg   config.JWTConfig
	otpCfg   config.OTPConfig
	now      func() time.Time
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	otpCfg := params.OTPConfig
	if otpCfg.CodeLength <= 0 {
		otpCfg.CodeLength = 6
	}
	if otpCfg.TTL <= 0 {
		otpCfg.TTL = 120 * time.Second
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		store:    params.Store,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		otpCfg:   otpCfg,
		now:      clock,
	}, nil
}

// SendOTP issues a code, creating the user on first contact.
func (s *service) SendOTP(ctx context.Context, phoneNo string) (*OTPResult, error) {
	phoneNo, err := normalizePhone(phoneNo)
	if err != nil {
		return nil, err
	}
	if _, err := s.findOrCreate(ctx, phoneNo); err != nil {
		return nil, err
	}
	return s.issue(ctx, phoneNo)
}

// ResendOTP issues a fresh code for an existing user.
func (s *service) ResendOTP(ctx context.Context, phoneNo string) (*OTPResult, error) {
	phoneNo, err := normalizePhone(phoneNo)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, phoneNo); err != nil {
		return nil, err
	}
	return s.issue(ctx, phoneNo)
}

func (s *service) VerifyOTP(ctx context.Context, phoneNo, code string) (*VerifyResult, error) {
	code = strings.TrimSpace(code)
	if strings.TrimSpace(phoneNo) == "" || code == "" {
		return nil, ErrOTPRequired
	}
	phoneNo, err := normalizePhone(phoneNo)
	if err != nil {
		return nil, err
	}
	user, err := s.find(ctx, phoneNo)
	if err != nil {
		return nil, err
	}

	key := s.store.OTPCodeKey(phoneNo)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read otp")
	}
	if !codesMatch(stored, code) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
	}
	// A concurrent verify may have consumed the same code first.
	claimed, err := s.store.GetDel(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
	}
	if !codesMatch(claimed, code) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		SubjectID: user.ID,
		Role:      enums.RoleUser,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.sessions.Start(ctx, accessID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &VerifyResult{Token: token, User: FromModel(user)}, nil
}

// Logout revokes the session behind the presented access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issue(ctx context.Context, phoneNo string) (*OTPResult, error) {
	if s.otpCfg.Cooldown > 0 {
		cooldownKey := s.store.OTPCooldownKey(phoneNo)
		ok, err := s.store.SetNX(ctx, cooldownKey, "1", s.otpCfg.Cooldown)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "otp cooldown")
		}
		if !ok {
			remaining, err := s.store.TTL(ctx, cooldownKey)
			if err != nil || remaining <= 0 {
				remaining = s.otpCfg.Cooldown
			}
			seconds := int((remaining + time.Second - 1) / time.Second)
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit,
				fmt.Sprintf("please wait %d seconds before requesting otp again", seconds)).
				WithDetails(map[string]any{"retryAfterSeconds": seconds})
		}
	}

	if s.otpCfg.DailyLimit > 0 {
		day := s.now().UTC().Format("20060102")
		count, err := s.store.IncrWithTTL(ctx, s.store.OTPQuotaKey(phoneNo, day), quotaWindow)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "otp quota")
		}
		if count > int64(s.otpCfg.DailyLimit) {
			return nil, ErrDailyQuota
		}
	}

	code, err := security.GenerateNumericCode(s.otpCfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	if err := s.store.Set(ctx, s.store.OTPCodeKey(phoneNo), code, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	result := &OTPResult{PhoneNo: phoneNo, ExpiresIn: int(s.otpCfg.TTL / time.Second)}
	if s.otpCfg.ExposeCode {
		result.OTP = &code
	}
	return result, nil
}

func (s *service) find(ctx context.Context, phoneNo string) (*models.User, error) {
	user, err := s.repo.FindByPhone(ctx, phoneNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}

func (s *service) findOrCreate(ctx context.Context, phoneNo string) (*models.User, error) {
	user, err := s.find(ctx, phoneNo)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	user, err = s.repo.Create(ctx, phoneNo)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.find(ctx, phoneNo)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}
	return user, nil
}

func normalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

func codesMatch(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
