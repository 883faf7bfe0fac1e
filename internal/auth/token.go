// Package auth signs and reads the bearer tokens the API accepts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"masar-finance/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrMissingClaim = errors.New("token is missing a required claim")
	ErrEmptySecret  = errors.New("signing secret is empty")
	ErrInvalidActor = errors.New("actor id must be a uuid")
	ErrInvalidRole  = errors.New("role is required")
)

// Claims is what a token carries into the request context.
type Claims struct {
	UserID         string
	OrganizationID string
	Role           string
	ExpiresAt      time.Time
}

// Issuer mints HS256 tokens for operators and service callers.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret), now: time.Now}, nil
}

func (i *Issuer) Issue(userID, organizationID, role string, ttl time.Duration) (string, Claims, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", Claims{}, ErrInvalidActor
	}
	org, err := tenant.ParseOrganizationID(organizationID)
	if err != nil {
		return "", Claims{}, err
	}
	if role == "" {
		return "", Claims{}, ErrInvalidRole
	}

	claims := Claims{
		UserID:         userID,
		OrganizationID: org.String(),
		Role:           role,
		ExpiresAt:      i.now().Add(ttl).UTC().Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":         claims.UserID,
		"organization_id": claims.OrganizationID,
		"role":            claims.Role,
		"exp":             claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies tokenString against secret. user_id and organization_id
// must be present; role may be empty.
func Parse(secret, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	claims.UserID, _ = mc["user_id"].(string)
	if claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}
	claims.OrganizationID, _ = mc["organization_id"].(string)
	if claims.OrganizationID == "" {
		return Claims{}, fmt.Errorf("%w: organization_id", ErrMissingClaim)
	}
	claims.Role, _ = mc["role"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
