package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/repositories"
	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService выпускает и проверяет токены. Каждый токен подписан
// персональным jwt_secret своего владельца, поэтому проверка сначала
// находит владельца по claims и только потом проверяет подпись.
type JWTService struct {
	users     repositories.UserStore
	algorithm string
	tokenTTL  time.Duration
}

func NewJWTService(users repositories.UserStore, algorithm string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		users:     users,
		algorithm: algorithm,
		tokenTTL:  tokenTTL,
	}
}

func (s *JWTService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  strconv.Itoa(user.ID),
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.algorithm), claims)
	signed, err := token.SignedString([]byte(user.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// VerifyToken находит владельца по claims и проверяет подпись его секретом.
// Любой дефект токена — одна и та же ошибка аутентификации, чтобы не
// раскрывать, существует ли пользователь.
func (s *JWTService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := peekUserID(tokenString)
	if err != nil {
		return nil, &apierrors.AuthenticationError{Message: messages.Get("invalid_token")}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, &apierrors.AuthenticationError{Message: messages.Get("invalid_token")}
	}

	verifier := jwtauth.New(s.algorithm, []byte(user.JWTSecret), nil)
	if _, err := jwtauth.VerifyToken(verifier, tokenString); err != nil {
		return nil, &apierrors.AuthenticationError{Message: messages.Get("invalid_token")}
	}
	return user, nil
}

// peekUserID достает user_id из claims без проверки подписи.
func peekUserID(tokenString string) (int, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}

	switch v := claims["user_id"].(type) {
	case string:
		return strconv.Atoi(v)
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("user_id claim missing")
}
