package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"  // secure random generation for rotation identifiers
	"encoding/hex" // hex encoding for rotation identifiers
	"errors"       // sentinel error values
	"time"         // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token validation failures are reported through these sentinels so
// callers can map each cause to the right response. Malformed covers
// everything structurally wrong: bad segments, wrong algorithm, bad
// signature. Expired is a cryptographically valid token past its exp.
// Revoked is returned by callers holding denylist or rotation state;
// it is defined here so the whole taxonomy lives in one place.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AccessClaims are the decoded claims of a validated access token.
type AccessClaims struct {
	UserID uint64    // sub claim
	Role   string    // role claim
	JTI    string    // rotation identifier carried by the token
	Exp    time.Time // expiry, used to bound denylist entries
}

// NewAccessToken builds and signs an HS256 JWT for a user. The token
// carries the standard sub/exp/iat claims plus the user's role and the
// rotation identifier current at issue time. Validators compare the
// embedded jti against the user's stored one, so rotating the stored
// value invalidates every previously issued token.
func NewAccessToken(secret string, userID uint64, role, jti string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"jti":  jti,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and decodes the
// claims. It never consults revocation state; the middleware layers
// the denylist and rotation checks on top.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC; a token signed with another
		// algorithm is malformed as far as this service is concerned.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrTokenMalformed
	}
	if !tok.Valid {
		return AccessClaims{}, ErrTokenMalformed
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrTokenMalformed
	}

	out := AccessClaims{}
	sub, ok := claims["sub"].(float64) // numeric claims decode as float64
	if !ok || sub < 0 {
		return AccessClaims{}, ErrTokenMalformed
	}
	out.UserID = uint64(sub)
	if out.Role, ok = claims["role"].(string); !ok {
		return AccessClaims{}, ErrTokenMalformed
	}
	if out.JTI, ok = claims["jti"].(string); !ok || out.JTI == "" {
		return AccessClaims{}, ErrTokenMalformed
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.Exp = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}

// NewJTI returns a fresh rotation identifier: 16 bytes of secure
// randomness as 32 hex characters.
func NewJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
