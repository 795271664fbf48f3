package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/portfolio/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

// Session 是一次成功登录的结果。
type Session struct {
	User        *db.User  `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService 负责后台账号的登录、登出与令牌校验。
// 访问令牌是 HS256 JWT，jti 指向 auth_sessions 中的一行。
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	events *AuthEvents
	now    func() time.Time
}

// NewAuthService 创建 AuthService。ttl 非正时使用 24 小时。
func NewAuthService(gdb *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		db:     gdb,
		secret: []byte(secret),
		ttl:    ttl,
		events: NewAuthEvents(),
		now:    time.Now,
	}
}

// Subscribe 订阅认证状态变化。
func (s *AuthService) Subscribe(fn func(AuthEvent)) func() {
	return s.events.Subscribe(fn)
}

// EnsureAdmin 按配置创建管理员账号，已存在时不做修改。
func (s *AuthService) EnsureAdmin(email, password string) error {
	return db.EnsureUser(s.db, email, password)
}

// SignIn 校验邮箱密码并签发访问令牌。邮箱不存在与密码错误返回同一个错误。
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	record := db.AuthSession{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create auth session: %w", err)
	}

	token, err := s.sign(record, now)
	if err != nil {
		return nil, err
	}

	log.Printf("[auth] user %d signed in", user.ID)
	s.events.Emit(AuthEvent{Type: EventSignedIn, UserID: user.ID, SessionID: record.ID, At: now})
	return &Session{User: &user, AccessToken: token, ExpiresAt: record.ExpiresAt}, nil
}

// SignOut 吊销令牌对应的会话。未知或已过期的令牌不视为错误。
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	record, err := s.lookupSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil
		}
		return err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(record).Update("revoked_at", now).Error; err != nil {
		return fmt.Errorf("revoke auth session: %w", err)
	}

	log.Printf("[auth] user %d signed out", record.UserID)
	s.events.Emit(AuthEvent{Type: EventSignedOut, UserID: record.UserID, SessionID: record.ID, At: now})
	return nil
}

// CurrentUser 返回令牌对应的用户。令牌缺失、无效、过期或已吊销时返回 (nil, nil)。
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*db.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	record, err := s.lookupSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil, nil
		}
		return nil, err
	}

	var user db.User
	if err := s.db.WithContext(ctx).First(&user, record.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Refresh 延长会话有效期并签发新令牌，旧令牌在原有效期内仍可用。
func (s *AuthService) Refresh(ctx context.Context, token string) (*Session, error) {
	record, err := s.lookupSession(ctx, token)
	if err != nil {
		return nil, err
	}

	var user db.User
	if err := s.db.WithContext(ctx).First(&user, record.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	now := s.now().UTC()
	record.ExpiresAt = now.Add(s.ttl)
	if err := s.db.WithContext(ctx).Model(record).Update("expires_at", record.ExpiresAt).Error; err != nil {
		return nil, fmt.Errorf("extend auth session: %w", err)
	}

	refreshed, err := s.sign(*record, now)
	if err != nil {
		return nil, err
	}

	s.events.Emit(AuthEvent{Type: EventTokenRefreshed, UserID: user.ID, SessionID: record.ID, At: now})
	return &Session{User: &user, AccessToken: refreshed, ExpiresAt: record.ExpiresAt}, nil
}

func (s *AuthService) sign(record db.AuthSession, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        record.ID,
		Subject:   strconv.FormatUint(uint64(record.UserID), 10),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) lookupSession(ctx context.Context, token string) (*db.AuthSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	); err != nil {
		return nil, ErrSessionInvalid
	}
	if claims.ID == "" {
		return nil, ErrSessionInvalid
	}

	var record db.AuthSession
	if err := s.db.WithContext(ctx).Where("id = ?", claims.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if record.RevokedAt != nil || !record.ExpiresAt.After(s.now()) {
		return nil, ErrSessionInvalid
	}
	return &record, nil
}
