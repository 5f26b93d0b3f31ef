package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

var supportedMethods = map[string]*jwtlib.SigningMethodHMAC{
	jwtlib.SigningMethodHS256.Alg(): jwtlib.SigningMethodHS256,
	jwtlib.SigningMethodHS384.Alg(): jwtlib.SigningMethodHS384,
	jwtlib.SigningMethodHS512.Alg(): jwtlib.SigningMethodHS512,
}

// Claims carries the user's email as the subject and the immutable user id as uid.
// Emails can change hands, so a token is only honoured for the id it was issued to.
type Claims struct {
	UserID string `json:"uid"`
	jwtlib.RegisteredClaims
}

// Issuer signs and verifies bearer tokens for one user.
type Issuer struct {
	secret []byte
	method *jwtlib.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, algorithm string, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	method, ok := supportedMethods[strings.ToUpper(algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	return &Issuer{secret: secret, method: method, ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(subject, userID string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	if userID == "" {
		return "", errors.New("token user id is empty")
	}
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(i.method, claims)
	return token.SignedString(i.secret)
}

// Verify returns the claims of a valid token. Every failure is reported as
// ErrUnauthorized; the underlying reason is wrapped for logging only.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("%w: empty token", appErr.ErrUnauthorized)
	}
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != i.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{i.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", appErr.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject or uid", appErr.ErrUnauthorized)
	}
	return claims, nil
}
