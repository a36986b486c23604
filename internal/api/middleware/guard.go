package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// guardedSession is what Guard reads from, and clears on, a session store.
type guardedSession interface {
	Snapshot() domain.Session
	Logout(ctx context.Context) error
}

type resetter interface{ Reset() }

// Guard protects a screen. It asks authz.Decide and either renders the
// screen or answers 303 See Other with the decision's target. An empty
// roles list admits any authenticated user.
func Guard(log zerolog.Logger, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ws := Workspace(c)
			if ws == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware missing")
			}
			return guard(c, next, log, ws.ID, ws.Store, ws.Cache, roles)
		}
	}
}

func guard(c echo.Context, next echo.HandlerFunc, log zerolog.Logger, id string, sess guardedSession, cache resetter, roles []domain.Role) error {
	d := authz.Decide(sess.Snapshot(), roles...)
	metrics.GuardDecisionsTotal.WithLabelValues(d.Outcome.String()).Inc()

	switch d.Outcome {
	case authz.Allow:
		return next(c)
	case authz.RedirectLogin:
		return c.Redirect(http.StatusSeeOther, authz.LoginURL(c.Request().RequestURI))
	case authz.RedirectCorrupted:
		log.Warn().Str("session_id", id).Msg("session without role; clearing")
		if err := sess.Logout(c.Request().Context()); err != nil {
			log.Error().Err(err).Str("session_id", id).Msg("failed to erase token")
		}
		cache.Reset()
		return c.Redirect(http.StatusSeeOther, d.Target)
	default:
		return c.Redirect(http.StatusSeeOther, d.Target)
	}
}
