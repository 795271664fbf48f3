package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// AuthEventType 标识一次认证状态变化。
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent 是推送给订阅者的状态变化。
type AuthEvent struct {
	Type      AuthEventType
	UserID    uint
	SessionID string
	At        time.Time
}

type authListener struct {
	removed atomic.Bool
	fn      func(AuthEvent)
}

// AuthEvents 管理认证状态变化的订阅者。
// 事件按注册顺序同步派发，派发时不持有任何锁，监听器可以在回调里
// 取消订阅或触发新的认证事件（例如调用 SignOut）。
type AuthEvents struct {
	mu        sync.Mutex
	listeners []*authListener
}

// NewAuthEvents 创建空的事件分发器。
func NewAuthEvents() *AuthEvents {
	return &AuthEvents{}
}

// Subscribe 注册监听器并返回取消函数。取消函数可重复调用，
// 返回后监听器不会再被调用；其他 goroutine 中已经开始的那次回调会照常执行完。
func (e *AuthEvents) Subscribe(fn func(AuthEvent)) func() {
	if fn == nil {
		return func() {}
	}

	listener := &authListener{fn: fn}
	e.mu.Lock()
	e.listeners = append(e.listeners, listener)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			listener.removed.Store(true)

			e.mu.Lock()
			defer e.mu.Unlock()
			for i, candidate := range e.listeners {
				if candidate == listener {
					e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit 将事件派发给当前所有监听器。
func (e *AuthEvents) Emit(event AuthEvent) {
	e.mu.Lock()
	snapshot := make([]*authListener, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, listener := range snapshot {
		if !listener.removed.Load() {
			listener.fn(event)
		}
	}
}

// Len 返回当前监听器数量。
func (e *AuthEvents) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
