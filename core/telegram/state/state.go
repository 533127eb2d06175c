// Package state keeps per-user conversation sessions.
//
// A Session is domain agnostic: the flow and state names plus a flat string map
// of collected fields. Each user owns at most one session.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned by helpers that require an active session.
var ErrNoSession = errors.New("state: no active session")

// Session is the stored conversation position of a single user.
type Session struct {
	Flow      string            `json:"flow"`
	State     string            `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Data != nil {
		out.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	return &out
}

// Store persists sessions keyed by Telegram user id.
// Get reports ok=false when the user has no session.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, bool, error)
	Save(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}

// Backend names accepted by configuration.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

func expired(s *Session, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.UpdatedAt) > ttl
}
