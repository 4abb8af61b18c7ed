package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// LoginResult 登录成功后的返回体
type LoginResult struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// AuthService 管理员登录/登出与令牌解析
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Resolve 解析令牌并加载会话身份；令牌或会话无效返回 ErrInvalidToken
	Resolve(ctx context.Context, token string) (session.UserInfo, error)
}

type authService struct {
	users    repository.AdminUserRepository
	sessions *session.Store
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(users repository.AdminUserRepository, sessions *session.Store, secret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{users: users, sessions: sessions, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	sid := uuid.NewString()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	info := session.UserInfo{Name: user.Name, Role: user.Role, Email: user.Email}
	if err := s.sessions.Put(ctx, sid, info); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &LoginResult{Name: user.Name, Role: user.Role, Email: user.Email, Token: token}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	sid, err := s.sessionID(token)
	if err != nil {
		return ErrInvalidToken
	}
	return s.sessions.Delete(ctx, sid)
}

func (s *authService) Resolve(ctx context.Context, token string) (session.UserInfo, error) {
	sid, err := s.sessionID(token)
	if err != nil {
		return session.UserInfo{}, ErrInvalidToken
	}
	info, ok := s.sessions.Get(ctx, sid)
	if !ok {
		return session.UserInfo{}, ErrInvalidToken
	}
	return info, nil
}

func (s *authService) sessionID(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
