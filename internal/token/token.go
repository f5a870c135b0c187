// Package token mints and verifies the short-lived HMAC credentials that
// drive QR check-in. The signing algorithm is pinned: anything but HS256
// is rejected outright, there is no negotiation.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// CheckInClaims is the claim set carried by a check-in token.
type CheckInClaims struct {
	BatchID   string `json:"batchId"`
	SubjectID string `json:"subjectId"`
	FacultyID string `json:"facultyId"`
	Period    int    `json:"period"`
	jwt.RegisteredClaims
}

// Service signs and verifies check-in tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Mint issues a token for one batch+subject+period, valid for the
// configured TTL from now.
func (s *Service) Mint(batchID, subjectID, facultyID string, period int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	claims := CheckInClaims{
		BatchID:   batchID,
		SubjectID: subjectID,
		FacultyID: facultyID,
		Period:    period,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, algorithm and expiry of raw against the
// supplied current time. Expired tokens return ErrExpired; any other
// defect returns ErrInvalid.
func (s *Service) Verify(raw string, now time.Time) (*CheckInClaims, error) {
	claims := &CheckInClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
