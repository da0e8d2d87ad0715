package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
)

// RegisterStaff registers the scheduling endpoints.  Every route resolves
// the bearer token first and then applies its own role allow-list.
func RegisterStaff(e *echo.Echo, d Deps) {
	authn := middleware.Authenticate(d.Resolver, d.Log)
	gate := func(roles ...model.Role) echo.MiddlewareFunc {
		rg := middleware.RoleGate(d.Gate, roles...)
		return func(next echo.HandlerFunc) echo.HandlerFunc { return authn(rg(next)) }
	}
	var (
		everyone     = gate(model.RoleEmployee, model.RoleManager, model.RoleAdmin)
		managers     = gate(model.RoleManager, model.RoleAdmin)
		admins       = gate(model.RoleAdmin)
		declarations = gate(model.RoleEmployee, model.RoleManager)
	)

	for _, prefix := range apiPrefixes {
		g := e.Group(prefix)

		// ---- Positions ----
		g.GET("/positions", d.Positions.List, everyone, d.PositionsCache)
		g.POST("/positions", d.Positions.Create, managers)
		g.DELETE("/positions/:id", d.Positions.Delete, admins)

		// ---- Schedules ----
		g.GET("/schedules/me", d.Schedules.Mine, everyone)
		g.GET("/schedules", d.Schedules.List, managers)
		g.POST("/schedules", d.Schedules.Create, managers)
		g.PATCH("/schedules/:id/status", d.Schedules.UpdateStatus, managers)

		// ---- Availabilities ----
		g.PUT("/availabilities", d.Availabilities.Declare, declarations)
		g.GET("/availabilities/me", d.Availabilities.Mine, declarations)
		g.GET("/availabilities", d.Availabilities.ByDate, managers)

		// ---- Users ----
		g.PUT("/users/:id/pin", d.UserAdmin.SetPin, admins)
	}
}
