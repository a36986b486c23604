package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/workspace"
)

// WorkspaceKey is the echo context key of the request's workspace.
const WorkspaceKey = "workspace"

const renewKey = "session.renew"

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session binds every request to the workspace of its browser session. A
// request without a valid session cookie gets a fresh session id. The
// workspace is rehydrated from its stored token on first use.
func Session(mgr *workspace.Manager, cookie CookieConfig, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := sessionID(c, cookie.Name)
			if id == "" {
				id = uuid.NewString()
				setCookie(c, cookie, id)
			}

			ws := mgr.Get(id)
			if err := ws.Rehydrate(c.Request().Context()); err != nil {
				// The guard treats the session as unauthenticated; the next
				// request tries again.
				log.Warn().Err(err).Str("session_id", id).Msg("session rehydration deferred")
			}
			c.Set(WorkspaceKey, ws)
			c.Set(renewKey, func() *workspace.Workspace {
				return renew(c, mgr, cookie, log)
			})
			return next(c)
		}
	}
}

// Workspace returns the workspace bound by Session, or nil.
func Workspace(c echo.Context) *workspace.Workspace {
	ws, _ := c.Get(WorkspaceKey).(*workspace.Workspace)
	return ws
}

// RenewSession moves the request onto a fresh session id and returns its
// workspace. Login and signup call it before accepting credentials, so an id
// planted in the browser beforehand never becomes authenticated. The previous
// workspace is dropped and its token erased.
func RenewSession(c echo.Context) *workspace.Workspace {
	fn, _ := c.Get(renewKey).(func() *workspace.Workspace)
	if fn == nil {
		return nil
	}
	return fn()
}

func renew(c echo.Context, mgr *workspace.Manager, cookie CookieConfig, log zerolog.Logger) *workspace.Workspace {
	old := Workspace(c)
	id := uuid.NewString()
	ws := mgr.Get(id)
	if old != nil {
		if err := mgr.Drop(c.Request().Context(), old.ID); err != nil {
			log.Warn().Err(err).Str("session_id", old.ID).Msg("previous session token not erased")
		}
	}
	setCookie(c, cookie, id)
	c.Set(WorkspaceKey, ws)
	return ws
}

func setCookie(c echo.Context, cookie CookieConfig, id string) {
	c.SetCookie(&http.Cookie{
		Name:     cookie.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionID(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return ""
	}
	return ck.Value
}
