package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/repository"
	appErrors "github.com/noah-isme/alumni-hub-api/pkg/errors"
)

type sessionRepository interface {
	Save(ctx context.Context, session models.Session) error
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

// AuthConfig defines the two role templates and token settings.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	AdminEmail        string
	AdminName         string
	AdminPasswordHash string
	GuestEmail        string
	GuestName         string
}

// AuthService signs actors in as one of two fixed identities.
type AuthService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// HashPassword returns a bcrypt hash for plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login resolves the requested role template. Admin requires matching credentials; guest requires none.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var session models.Session
	switch req.Role {
	case models.RoleAdmin:
		if !strings.EqualFold(strings.TrimSpace(req.Email), s.config.AdminEmail) || s.config.AdminPasswordHash == "" {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(req.Password)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		session = models.Session{Role: models.RoleAdmin, Name: s.config.AdminName, Email: s.config.AdminEmail}
	default:
		session = models.Session{Role: models.RoleGuest, Name: s.config.GuestName, Email: s.config.GuestEmail}
	}

	token, err := s.generateAccessToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Warn("failed to persist session", zap.String("role", string(session.Role)), zap.Error(err))
	}
	s.logger.Info("signed in", zap.String("role", string(session.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Session:     session,
	}, nil
}

// Logout removes the stored session when it belongs to caller. Another identity's session is left alone.
func (s *AuthService) Logout(ctx context.Context, caller models.Session) error {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if stored.Role != caller.Role || !strings.EqualFold(stored.Email, caller.Email) {
		s.logger.Debug("logout left another identity's session in place", zap.String("role", string(caller.Role)))
		return nil
	}
	if err := s.repo.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// Current returns the stored session.
func (s *AuthService) Current(ctx context.Context) (*models.Session, error) {
	session, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active session")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleGuest {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token role")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(session models.Session) (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		Role:  session.Role,
		Name:  session.Name,
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   session.Email,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
