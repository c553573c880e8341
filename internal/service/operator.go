package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = time.Hour
	minPasswordLen  = 8
	tokenIssuer     = "power-monitor"
)

var (
	ErrAuthDisabled       = errors.New("operator auth is disabled")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrOperatorExists     = repository.ErrOperatorExists
)

// AuthConfig controls operator authentication for the control endpoint.
type AuthConfig struct {
	Enabled    bool
	SigningKey string
	TokenTTL   time.Duration
}

// OperatorAuth registers operators and turns their credentials into bearer
// tokens. A token names the operator, so control requests made with it are
// attributed in the command log.
type OperatorAuth struct {
	operators repository.OperatorRepo
	cfg       AuthConfig
	now       func() time.Time
}

func NewOperatorAuth(operators repository.OperatorRepo, cfg AuthConfig) *OperatorAuth {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &OperatorAuth{operators: operators, cfg: cfg, now: time.Now}
}

// Enabled reports whether control requests need a bearer token.
func (a *OperatorAuth) Enabled() bool {
	return a.cfg.Enabled
}

// Register creates an operator. Usernames are trimmed.
func (a *OperatorAuth) Register(ctx context.Context, username, password string) (models.Operator, error) {
	if !a.cfg.Enabled {
		return models.Operator{}, ErrAuthDisabled
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Operator{}, ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return models.Operator{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Operator{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := a.operators.Create(ctx, username, string(hash))
	if err != nil {
		return models.Operator{}, err
	}
	return models.Operator{ID: id, Username: username}, nil
}

// SignIn checks the credentials and returns a signed token. Unknown
// usernames and wrong passwords fail the same way.
func (a *OperatorAuth) SignIn(ctx context.Context, username, password string) (string, error) {
	if !a.cfg.Enabled {
		return "", ErrAuthDisabled
	}
	op, err := a.operators.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("look up operator: %w", err)
	}
	if op == nil || bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return a.issue(*op)
}

type operatorClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func (a *OperatorAuth) issue(op models.Operator) (string, error) {
	now := a.now()
	claims := operatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(op.ID),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
		},
		Username: op.Username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.SigningKey))
}

// Authenticate resolves a bearer token to the operator it was issued to.
func (a *OperatorAuth) Authenticate(token string) (models.Operator, error) {
	claims := &operatorClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(a.cfg.SigningKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return models.Operator{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return models.Operator{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return models.Operator{ID: id, Username: claims.Username}, nil
}
