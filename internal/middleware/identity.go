package middleware

// identity.go keeps the resolved user on the echo context.  Authenticate
// stores it; handlers and the role gate read it through CurrentUser.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/model"
)

const userKey = "auth.user"

// SetUser attaches u to the request context.
func SetUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}

// CurrentUser returns the authenticated user, or nil when the request
// carries no valid token.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// userID returns the authenticated user id as a string, or "guest".
func userID(c echo.Context) string {
	if u := CurrentUser(c); u != nil {
		return strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}
