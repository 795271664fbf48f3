package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
	"golang.org/x/time/rate"
)

const (
	sessionTokenKey    = "access_token"
	contextUserKey     = "auth_user"
	contextUploaderKey = "uploader"
	serviceRoleOwner   = "service-role"
	apiKeyHeader       = "apikey"
)

// loginLimiter 按客户端 IP 限制登录尝试：每 12 秒恢复一次，最多连续 5 次。
// 闲置超过令牌桶回满时间的条目等同于新建的桶，会在 Allow 时被顺带清理。
type loginLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*loginBucket
	every     time.Duration
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

type loginBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*loginBucket),
		every:    12 * time.Second,
		burst:    5,
		now:      time.Now,
	}
}

func (l *loginLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idle := l.every * time.Duration(l.burst)
	if now.Sub(l.lastSweep) >= idle {
		for key, bucket := range l.limiters {
			if now.Sub(bucket.lastSeen) >= idle {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	bucket, ok := l.limiters[ip]
	if !ok {
		bucket = &loginBucket{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

type loginPayload struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login 处理管理员登录，支持 JSON 与表单提交。
func (a *API) Login(c *gin.Context) {
	if !a.limiter.Allow(c.ClientIP()) {
		respondError(c, http.StatusTooManyRequests, "登录尝试过于频繁，请稍后再试")
		return
	}

	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "请输入邮箱和密码")
		return
	}

	result, err := a.auth.SignIn(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondInternal(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, result.AccessToken)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout 吊销当前会话并清理 Cookie。
func (a *API) Logout(c *gin.Context) {
	if token := accessToken(c); token != "" {
		if err := a.auth.SignOut(c.Request.Context(), token); err != nil {
			respondInternal(c, err)
			return
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// CurrentUser 返回当前登录用户，未登录时 user 为 null。
func (a *API) CurrentUser(c *gin.Context) {
	user, err := a.auth.CurrentUser(c.Request.Context(), accessToken(c))
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RefreshSession 延长会话并返回新的访问令牌。
func (a *API) RefreshSession(c *gin.Context) {
	result, err := a.auth.Refresh(c.Request.Context(), accessToken(c))
	if err != nil {
		if errors.Is(err, service.ErrSessionInvalid) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondInternal(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, result.AccessToken)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// APIKeyRequired 要求请求携带匿名 Key 或服务端 Key。
func (a *API) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if key == "" || (key != a.anonKey && !a.isServiceKey(key)) {
			respondError(c, http.StatusUnauthorized, "缺少或无效的 API Key")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRequired 校验后台访问权限：会话 Cookie、Bearer 令牌或服务端 Key 三者之一。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.isServiceKey(strings.TrimSpace(c.GetHeader(apiKeyHeader))) {
			c.Set(contextUploaderKey, serviceRoleOwner)
			c.Next()
			return
		}

		user, err := a.auth.CurrentUser(c.Request.Context(), accessToken(c))
		if err != nil {
			respondInternal(c, err)
			c.Abort()
			return
		}
		if user == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextUploaderKey, strconv.FormatUint(uint64(user.ID), 10))
		c.Next()
	}
}

func (a *API) isServiceKey(key string) bool {
	return a.serviceRoleKey != "" && key == a.serviceRoleKey
}

// accessToken 优先读取 Authorization 头，其次读取会话 Cookie。
func accessToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
		return token
	}
	return ""
}

func currentUploader(c *gin.Context) string {
	return c.GetString(contextUploaderKey)
}

func currentUser(c *gin.Context) *db.User {
	if value, ok := c.Get(contextUserKey); ok {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}
