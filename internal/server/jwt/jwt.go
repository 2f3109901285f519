package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/portfolio-tracker/internal/clock"
)

const issuer = "portfolio-tracker"

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 2 * time.Hour
)

var (
	// ErrInvalidSignature covers bad signatures, wrong keys and malformed tokens.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired indicates that the token is past its exp claim.
	ErrExpired = errors.New("token expired")
)

// KeyClass selects which secret signs or verifies a token.
type KeyClass int

const (
	AccessKey KeyClass = iota
	RefreshKey
)

func (k KeyClass) String() string {
	if k == RefreshKey {
		return "refresh"
	}
	return "access"
}

// Subject is the identity a token pair is issued for.
type Subject struct {
	ID    string
	Email string
}

// Claims represents JWT claims. Subject (sub) carries the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessToken      string
	RefreshToken     string
}

// Config содержит секреты и время жизни токенов
type Config struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Issuer signs and verifies access and refresh tokens with independent secrets.
type Issuer struct {
	clock  clock.Clock
	config Config
}

// NewIssuer creates a token issuer. Zero TTLs fall back to the defaults.
func NewIssuer(cfg Config, clk clock.Clock) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &Issuer{config: cfg, clock: clk}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (i *Issuer) AccessTokenTTL() time.Duration {
	return i.config.AccessTokenTTL
}

// Issue creates a new signed access/refresh pair for subject.
func (i *Issuer) Issue(subject Subject) (*TokenPair, error) {
	now := i.clock.Now()

	access, accessExp, err := i.sign(subject, AccessKey, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refresh, refreshExp, err := i.sign(subject, RefreshKey, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks the signature and expiry of token against the secret of class.
// Returns ErrExpired or ErrInvalidSignature.
func (i *Issuer) Verify(token string, class KeyClass) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret(class), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

func (i *Issuer) sign(subject Subject, class KeyClass, now time.Time) (string, time.Time, error) {
	ttl := i.config.AccessTokenTTL
	if class == RefreshKey {
		ttl = i.config.RefreshTokenTTL
	}
	expiresAt := now.Add(ttl)

	claims := Claims{
		Email: subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// jti делает каждый токен уникальным, даже если пара выпущена в ту же секунду
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret(class))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

func (i *Issuer) secret(class KeyClass) []byte {
	if class == RefreshKey {
		return i.config.RefreshSecret
	}
	return i.config.AccessSecret
}
