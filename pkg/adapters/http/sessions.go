package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
)

// hostedSession pairs a session with the mutex that confines it. Sessions
// are single-goroutine by contract; handlers and wait-timer callbacks both
// go through do/doErr so only one of them touches the session at a time.
type hostedSession struct {
	id   string
	mu   sync.Mutex
	sess *session.Session
}

// do runs fn under the session lock and returns the state afterwards.
func (hs *hostedSession) do(fn func(*session.Session)) sessionState {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	fn(hs.sess)
	return sessionState{ID: hs.id, Frame: hs.sess.Frame()}
}

// doErr is do for mutations that can fail. The returned view reflects
// whatever the mutation left behind, error or not.
func (hs *hostedSession) doErr(fn func(*session.Session) error) (sessionState, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	err := fn(hs.sess)
	return sessionState{ID: hs.id, Frame: hs.sess.Frame()}, err
}

func (hs *hostedSession) summary() sessionSummary {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return sessionSummary{
		ID:        hs.id,
		Running:   hs.sess.IsRunning(),
		NodeTitle: hs.sess.NodeTitle(),
	}
}

// sessionState is the wire form of a session: the presentation frame plus
// the identifier requests address it by.
type sessionState struct {
	ID string `json:"id"`
	session.Frame
}

type sessionSummary struct {
	ID        string `json:"id"`
	Running   bool   `json:"running"`
	NodeTitle string `json:"node_title"`
}

// sessionScheduler delivers wait-timer resumes back under the session lock
// and streams the state they produce. Registration and cancellation happen
// while the session holds the lock; the fire path takes it fresh, which is
// safe because timers never fire synchronously.
type sessionScheduler struct {
	host    *hostedSession
	base    ports.Scheduler
	publish func(sessionState)
}

func (ss *sessionScheduler) After(d time.Duration, fn func()) ports.CancelFunc {
	return ss.base.After(d, func() {
		view := ss.host.do(func(*session.Session) { fn() })
		if ss.publish != nil {
			ss.publish(view)
		}
	})
}

// newSessionID mints a short opaque identifier.
func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("s-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
