package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims carries the single claim the rest of the system trusts.
type jwtClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// JWTService signs and verifies HS256 tokens.
type JWTService struct {
	secret []byte
}

func NewJWTService(secret []byte) *JWTService {
	return &JWTService{secret: secret}
}

// CreateToken generates a signed token carrying the user ID.
func (s *JWTService) CreateToken(userID uuid.UUID, duration time.Duration) (string, error) {
	now := time.Now()

	claims := jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken validates the signature and expiry and returns the user ID.
// Every failure mode collapses to ErrInvalidToken.
func (s *JWTService) VerifyToken(tokenStr string) (uuid.UUID, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens that name a different signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
