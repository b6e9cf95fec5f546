package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenType is the token_type claim the login service puts on access tokens
const AccessTokenType = "access"

var (
	ErrMissingToken = errors.New("authentication credentials were not provided")
	ErrInvalidToken = errors.New("token is invalid or expired")
)

// Claims are the fields read from an access token
type Claims struct {
	UserID    interface{} `json:"user_id"`
	TokenType string      `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens issued by the login service
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier. An empty issuer skips the iss check.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses a raw token and returns the user it belongs to
func (v *TokenVerifier) Verify(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != "" && claims.TokenType != AccessTokenType {
		return 0, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	userID, err := parseUserID(claims.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return userID, nil
}

// Issue signs an access token for userID, used by the CLI and tests
func (v *TokenVerifier) Issue(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// user_id arrives as a JSON number or a numeric string
func parseUserID(v interface{}) (int64, error) {
	var id int64
	switch t := v.(type) {
	case float64:
		id = int64(t)
		if float64(id) != t {
			return 0, fmt.Errorf("user_id %v is not an integer", t)
		}
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("user_id %q is not numeric", t)
		}
		id = n
	case nil:
		return 0, errors.New("user_id claim missing")
	default:
		return 0, fmt.Errorf("unexpected user_id type %T", v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("user_id %d is not positive", id)
	}
	return id, nil
}
