package gateway

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Identity is the authenticated caller established by credential
// verification.
type Identity struct {
	UserID   string
	ClientID string
}

// Verifier turns a bearer credential into a caller identity. Failure must
// not expose internal error detail.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Verification errors. Handlers map these onto the taxonomy; the underlying
// parse failure is never forwarded.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// tokenClaims are the claims the gateway requires of a bearer token.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

// JWTVerifier verifies HS256-signed bearer tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a Verifier checking signatures against secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// NewToken signs a bearer token for the given identity. Used by provisioning
// tooling and tests.
func NewToken(secret, userID, clientID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserID:   userID,
		ClientID: clientID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify validates and parses the token, yielding the (user id, client id)
// pair it carries.
func (v *JWTVerifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	clientID := claims.ClientID
	if clientID == "" {
		clientID = claims.UserID
	}
	return Identity{UserID: claims.UserID, ClientID: clientID}, nil
}
