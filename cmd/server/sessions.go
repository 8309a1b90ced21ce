package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/catalog"
)

const wizardCookieName = "posadzki_kalkulator"

type catalogLoader interface {
	Load(ctx context.Context) *catalog.Catalog
}

type wizardSession struct {
	wizard   *calculator.Wizard
	lastSeen time.Time
}

// wizardRegistry keeps one wizard per browser in memory. Idle sessions expire
// after ttl and are swept lazily on access.
type wizardRegistry struct {
	mu        sync.Mutex
	sessions  map[string]*wizardSession
	loader    catalogLoader
	bounds    calculator.Bounds
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newWizardRegistry(loader catalogLoader, bounds calculator.Bounds, ttl time.Duration) *wizardRegistry {
	return &wizardRegistry{
		sessions: make(map[string]*wizardSession),
		loader:   loader,
		bounds:   bounds,
		ttl:      ttl,
		now:      time.Now,
	}
}

// wizard returns the visitor's wizard, creating a new one with a freshly
// loaded catalog when the cookie is missing or the session expired.
func (reg *wizardRegistry) wizard(w http.ResponseWriter, r *http.Request) *calculator.Wizard {
	now := reg.now()
	id := ""
	if c, err := r.Cookie(wizardCookieName); err == nil {
		id = c.Value
	}

	reg.mu.Lock()
	reg.sweepLocked(now)
	if sess, ok := reg.sessions[id]; ok && now.Sub(sess.lastSeen) <= reg.ttl {
		sess.lastSeen = now
		reg.mu.Unlock()
		return sess.wizard
	}
	reg.mu.Unlock()

	wiz := calculator.NewWizard(reg.loader.Load(r.Context()), reg.bounds)
	id = uuid.NewString()

	reg.mu.Lock()
	reg.sessions[id] = &wizardSession{wizard: wiz, lastSeen: now}
	reg.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     wizardCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return wiz
}

func (reg *wizardRegistry) sweepLocked(now time.Time) {
	if now.Sub(reg.lastSweep) < reg.ttl/4 {
		return
	}
	reg.lastSweep = now
	for id, sess := range reg.sessions {
		if now.Sub(sess.lastSeen) > reg.ttl {
			delete(reg.sessions, id)
		}
	}
}

func (reg *wizardRegistry) len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}
