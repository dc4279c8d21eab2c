// internal/api/sessions.go
package api

import (
	"net/http"
	"time"

	"github.com/newthinker/hedgeai/internal/dashboard"
	"github.com/newthinker/hedgeai/internal/metrics"
	"github.com/newthinker/hedgeai/internal/session"
)

// SessionCookie names the cookie holding the dashboard session ID.
const SessionCookie = "hedgeai_session"

// cookieSessions resolves the dashboard view of a browser from its
// session cookie, issuing a new session when the cookie is absent or stale.
type cookieSessions struct {
	store   *session.Store
	ttl     time.Duration
	secure  bool
	metrics *metrics.Registry
}

func (c *cookieSessions) Resolve(w http.ResponseWriter, r *http.Request) (*dashboard.View, error) {
	var id string
	if ck, err := r.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}

	sess, created, err := c.store.GetOrCreate(id)
	if err != nil {
		return nil, err
	}

	if created {
		ck := &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		}
		if c.ttl > 0 {
			ck.MaxAge = int(c.ttl.Seconds())
		}
		http.SetCookie(w, ck)
		if c.metrics != nil {
			c.metrics.SetSessionsActive(c.store.Len())
		}
	}
	return sess.View, nil
}
