package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const defaultCapacity = 50

// Notification is a transient, dismissible message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the write side used by the shell components.
type Notifier interface {
	Notify(level Level, message string)
	// Once emits the message only the first time key is seen and reports whether it did.
	Once(key string, level Level, message string) bool
}

// Center keeps a bounded, per-client notification history.
type Center struct {
	mu       sync.Mutex
	logger   *zap.Logger
	items    []Notification
	shown    map[string]struct{}
	capacity int
	now      func() time.Time
}

// NewCenter creates a notification center.
func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{
		logger:   logger,
		shown:    make(map[string]struct{}),
		capacity: defaultCapacity,
		now:      time.Now,
	}
}

// Notify appends a notification.
func (c *Center) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push(level, message)
}

// Once appends a notification keyed by key unless one was already shown.
func (c *Center) Once(key string, level Level, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.shown[key]; seen {
		return false
	}
	c.shown[key] = struct{}{}
	c.push(level, message)
	return true
}

// List returns the pending notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss removes a notification by id and reports whether it existed.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Center) push(level Level, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: c.now(),
	}
	c.items = append(c.items, n)
	if len(c.items) > c.capacity {
		c.items = c.items[len(c.items)-c.capacity:]
	}

	switch level {
	case LevelError:
		c.logger.Error("notification", zap.String("id", n.ID), zap.String("message", message))
	case LevelWarning:
		c.logger.Warn("notification", zap.String("id", n.ID), zap.String("message", message))
	default:
		c.logger.Debug("notification", zap.String("id", n.ID), zap.String("level", string(level)), zap.String("message", message))
	}
}
