package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

const tokenIssuer = "pao-metrics"

var (
	errSigningMethod  = errors.New("unexpected signing method")
	errInvalidClaims  = errors.New("invalid token claims")
	errSessionMissing = errors.New("no session")
	// ErrSessionMismatch marks a stored session whose token names another user or session.
	ErrSessionMismatch = errors.New("access token does not belong to session")
)

// TokenManager signs the access token carried by each client session.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager. A non-positive TTL means one hour.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// Claims is the access token payload. Subject is the user id.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateToken signs an access token for the user within session sessionID.
func (tm *TokenManager) GenerateToken(userID, email, sessionID string) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	})
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature, issuer and expiry.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errSigningMethod
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errInvalidClaims
	}
	return claims, nil
}

// ValidateSession checks that the session's token is valid and was issued
// for that same session and user.
func (tm *TokenManager) ValidateSession(session *domain.Session) error {
	if session == nil {
		return errSessionMissing
	}
	claims, err := tm.ParseToken(session.AccessToken)
	if err != nil {
		return err
	}
	if claims.SessionID != session.ID || claims.Subject != session.User.UserID {
		return ErrSessionMismatch
	}
	return nil
}
