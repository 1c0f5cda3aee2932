package service

import (
	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/ports"
)

// RedirectController owns the convenience redirect that used to be a hidden
// side effect of the session store: when the identity appears while the user
// is sitting on the login screen, navigate to the dashboard. It subscribes
// to session transitions so the store itself stays free of UI coupling.
// This is a convenience policy, not a security boundary.
type RedirectController struct {
	nav      ports.Navigator
	location func() string
	log      zerolog.Logger
}

// NewRedirectController wires the controller to the session service.
// location reports the frontend's current location at transition time.
func NewRedirectController(session ports.SessionService, nav ports.Navigator, location func() string, log zerolog.Logger) *RedirectController {
	c := &RedirectController{nav: nav, location: location, log: log}
	session.Subscribe(c.onTransition)
	return c
}

func (c *RedirectController) onTransition(tr ports.SessionTransition) {
	switch {
	case tr.Previous == nil && tr.Current != nil:
		if c.location() == LocationLogin {
			c.log.Debug().Str("to", LocationDashboard).Msg("post-login redirect")
			c.nav.NavigateTo(LocationDashboard)
		}
	case tr.Previous != nil && tr.Current == nil:
		c.nav.NavigateTo(LocationLogin)
	}
}
