package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// identity holds the claims the Auth middleware injected for this request.
type identity struct {
	UserID string
	Email  string
	Role   string
	OrgID  string
}

// ctxIdentity extracts the auth claims and performs a fast-fail check before
// any service call: every authenticated route needs a user id and an
// organization scope, and their presence proves the middleware ran.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get("user_id").(string)
	id.Email, _ = c.Get("email").(string)
	id.Role, _ = c.Get("role").(string)
	id.OrgID, _ = c.Get("org_id").(string)

	if id.UserID == "" || id.OrgID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
