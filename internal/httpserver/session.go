package httpserver

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nextagencyio/decoupled-commerce/internal/cartstore"
	"github.com/nextagencyio/decoupled-commerce/internal/domain"
	"github.com/nextagencyio/decoupled-commerce/internal/kv"
)

const (
	sessionCookie = "storefront_session"
	// A shopper's cart id sticks around as long as the upstream keeps the
	// cart; one year matches the cookie to that horizon.
	sessionCookieMaxAge = 365 * 24 * 60 * 60

	sessionIDKey = "sessionID"
)

// SessionManager hands out one cart store per shopper session. Stores are
// created lazily and rehydrated from the session's persisted cart id on
// first touch.
type SessionManager struct {
	backend cartstore.Backend
	newKV   func(scope string) kv.Store
	logger  *log.Logger

	mu     sync.Mutex
	stores map[string]*cartstore.Store
}

func NewSessionManager(backend cartstore.Backend, newKV func(scope string) kv.Store, logger *log.Logger) *SessionManager {
	return &SessionManager{
		backend: backend,
		newKV:   newKV,
		logger:  logger,
		stores:  make(map[string]*cartstore.Store),
	}
}

// Store returns the session's cart store, creating and rehydrating it on
// first use. A rehydrate failure is logged and tolerated: the persisted id
// survives for the next attempt and the shopper starts from an empty view.
func (m *SessionManager) Store(ctx context.Context, sessionID string) *cartstore.Store {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = cartstore.New(m.backend, m.newKV(sessionID), m.logger)
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	if !ok {
		if err := store.Rehydrate(ctx); err != nil && m.logger != nil {
			m.logger.Printf("session %s: rehydrate: %v", sessionID, err)
		}
	}
	return store
}

// sessionMiddleware assigns a session cookie on first contact and rejects
// cart routes when no commerce backend is wired (demo mode). secure marks
// the cookie Secure for TLS deployments.
func sessionMiddleware(sessions *SessionManager, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrCartUnavailable.Error()})
			return
		}

		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

func sessionStore(c *gin.Context, deps Deps) *cartstore.Store {
	id := c.GetString(sessionIDKey)
	return deps.Sessions.Store(c.Request.Context(), id)
}
