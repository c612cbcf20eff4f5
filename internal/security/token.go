package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RefreshTokenBytes = 40
	ResetTokenBytes   = 32
)

// ErrInvalidToken is the only failure VerifyAccessToken reports, whatever
// the underlying cause.
var ErrInvalidToken = errors.New("invalid or expired token")

type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, accessTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    accessTTL,
		now:    time.Now,
	}
}

func (c *TokenCodec) IssueAccessToken(userID string) (string, error) {
	now := c.now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) VerifyAccessToken(tokenStr string) (string, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func IssueRefreshToken() (string, error) {
	return randomHex(RefreshTokenBytes)
}

func IssueResetToken() (string, error) {
	return randomHex(ResetTokenBytes)
}

// HashToken is the at-rest form of refresh and reset tokens.
func HashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
