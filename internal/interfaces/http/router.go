package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	adaptermiddleware "elearn-backoffice/internal/adapters/http/middleware"
	"elearn-backoffice/internal/domain"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
	Decider       adaptermiddleware.AccessDecider
}

// NewRouter wires the whole admin surface. Each admin group is guarded by
// the access resolver against its own resource; the authorize and visibility
// endpoints are only behind authentication since they are the decision
// surface itself.
func NewRouter(
	roles *RolesHandler,
	access *AccessHandler,
	authz *AuthorizationHandler,
	trees *TreesHandler,
	m Middleware,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if m.XRay != nil {
		e.Use(m.XRay)
	}
	if m.RequestLogger != nil {
		e.Use(m.RequestLogger)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("")
	if m.Auth != nil {
		api.Use(m.Auth)
	}

	api.POST("/authorize", authz.Authorize)
	api.POST("/visibility", authz.Visibility)

	guard := func(resource domain.Resource) echo.MiddlewareFunc {
		return adaptermiddleware.Authorize(m.Decider, resource)
	}

	roleGroup := api.Group("/roles", guard(domain.ResourceRolePermission))
	roleGroup.POST("", roles.Create)
	roleGroup.GET("", roles.List)
	roleGroup.GET("/:name", roles.Get)
	roleGroup.PUT("/:name", roles.Update)
	roleGroup.DELETE("/:name", roles.Delete)

	accessGroup := api.Group("/access", guard(domain.ResourceAccessManagement))
	accessGroup.POST("/:principal/roles", access.Grant)
	accessGroup.DELETE("/:principal/roles", access.Revoke)
	accessGroup.DELETE("/:principal", access.RevokeAll)
	accessGroup.GET("/:principal", access.Get)

	treeGroup := api.Group("/trees", guard(domain.ResourcePage))
	treeGroup.GET("/:key", trees.Get)
	treeGroup.PUT("/:key", trees.Replace)
	treeGroup.POST("/:key/operations", trees.Apply)

	return e
}
