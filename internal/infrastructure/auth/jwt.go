package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess = "access"
	tokenTypeReset  = "reset"

	defaultAccessTTL = 15 * time.Minute
	resetTTL         = time.Hour
)

// Claims - данные проверенного токена
type Claims struct {
	UserID   string
	Email    string
	IssuedAt time.Time
}

type JWTManager struct {
	secretKey []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewJWTManager(secretKey string, accessTTL time.Duration) (*JWTManager, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &JWTManager{
		secretKey: []byte(secretKey),
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

func (m *JWTManager) generate(userID, email, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":    userID,
		"email":  email,
		"exp":    expiresAt.Unix(),
		"iat":    now.Unix(),
		"iat_ms": now.UnixMilli(),
		"type":   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, expiresAt, nil
}

// GenerateAccessToken генерирует короткоживущий access token
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, time.Time, error) {
	return m.generate(userID, email, tokenTypeAccess, m.accessTTL)
}

// GenerateResetToken генерирует токен сброса пароля на 1 час
func (m *JWTManager) GenerateResetToken(userID, email string) (string, error) {
	token, _, err := m.generate(userID, email, tokenTypeReset, resetTTL)
	return token, err
}

// ValidateAccessToken проверяет access token
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateResetToken проверяет токен сброса пароля
func (m *JWTManager) ValidateResetToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeReset)
}

func (m *JWTManager) validate(tokenString, wantType string) (*Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	// Проверяем тип токена
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return nil, fmt.Errorf("invalid token type")
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return nil, fmt.Errorf("invalid subject in token")
	}

	email, _ := claims["email"].(string)

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("invalid iat in token")
	}

	issuedAt := iat.Time
	if ms, ok := claims["iat_ms"].(float64); ok {
		precise := time.UnixMilli(int64(ms))
		if precise.Unix() != iat.Unix() {
			return nil, fmt.Errorf("invalid iat_ms in token")
		}
		issuedAt = precise
	}

	return &Claims{
		UserID:   userID,
		Email:    email,
		IssuedAt: issuedAt,
	}, nil
}
