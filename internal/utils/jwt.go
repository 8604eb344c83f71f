package utils // package utils provides helpers for operator tokens and password hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for the operator console.
// The subject is a fresh session ID; role is ADMIN or ATTENDANT.  The
// token carries sub, role, exp, iat and jti claims.
func NewAccessToken(secret, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  "operator:" + uuid.NewString(),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
		"jti":  uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
