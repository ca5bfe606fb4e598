package handlers

import (
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jjenkins/trialfinder/internal/store"
)

// SessionCookie names the cookie carrying the session ID
const SessionCookie = "trialfinder_session"

// currentSession returns the caller's session, creating one when none
// exists. The cookie is reissued so its expiry tracks the idle timeout.
func currentSession(c *fiber.Ctx, sessions *store.SessionStore) *store.Session {
	sess, _ := sessions.GetOrCreate(c.Cookies(SessionCookie))
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(sessions.TTL()),
	})
	return sess
}

// existingSession returns the caller's session only if it already exists
func existingSession(c *fiber.Ctx, sessions *store.SessionStore) (*store.Session, bool) {
	id := c.Cookies(SessionCookie)
	if id == "" {
		return nil, false
	}
	return sessions.Get(id)
}

func render(c *fiber.Ctx, status int, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, templ.WithStatus(status)))
	return handler(c)
}
