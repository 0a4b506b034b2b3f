package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type JWTService struct {
	secret             []byte
	userTokenExpiry    time.Duration
	agentSessionExpiry time.Duration
}

type UserClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

type AgentSessionClaims struct {
	AgentSessionID uuid.UUID `json:"agent_session_id"`
	AgentID        uuid.UUID `json:"agent_id"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string, userTokenExpiry, agentSessionExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:             []byte(secret),
		userTokenExpiry:    userTokenExpiry,
		agentSessionExpiry: agentSessionExpiry,
	}
}

func (s *JWTService) GenerateUserToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()

	claims := UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.userTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "otas-api",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign user token: %w", err)
	}
	return signed, nil
}

// ValidateUserToken parses a user session token. Bad signatures, expired
// tokens, and tokens missing the user claim all return ErrInvalidToken so
// callers cannot distinguish them.
func (s *JWTService) ValidateUserToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, s.keyfunc)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *JWTService) GenerateAgentSessionToken(sessionID, agentID uuid.UUID) (string, error) {
	now := time.Now()

	claims := AgentSessionClaims{
		AgentSessionID: sessionID,
		AgentID:        agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.agentSessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "otas-api",
			Subject:   sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign agent session token: %w", err)
	}
	return signed, nil
}

// ValidateAgentSessionToken parses an agent session token. Both the session
// and agent claims must be present.
func (s *JWTService) ValidateAgentSessionToken(tokenString string) (*AgentSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AgentSessionClaims{}, s.keyfunc)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AgentSessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AgentSessionID == uuid.Nil || claims.AgentID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// keyfunc pins the algorithm to HMAC so an unsigned or asymmetric token can
// never pass with a stripped signature.
func (s *JWTService) keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
