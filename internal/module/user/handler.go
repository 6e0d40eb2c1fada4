package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/pkg"
)

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc    domain.UserService
	limits pkg.PageLimits
}

// NewUserHandler creates a UserHandler. limits bound the page size of List.
func NewUserHandler(svc domain.UserService, limits pkg.PageLimits) *UserHandler {
	return &UserHandler{svc: svc, limits: limits}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    domain.CodeSuccess,
		Message: domain.CodeSuccess.String(),
		Success: true,
		Data:    user,
	})
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.limits)

	page, err := h.svc.ListUsers(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// Update handles PUT /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req.Account, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Purge handles DELETE /api/v1/users/:id/purge.
func (h *UserHandler) Purge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.PurgeUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// BatchDelete handles POST /api/v1/users/batch-delete.
func (h *UserHandler) BatchDelete(c *gin.Context) {
	var req BatchDeleteRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	n, err := h.svc.DeleteUsers(c.Request.Context(), req.IDs)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, BatchDeleteResponse{Deleted: n})
}

// Restore handles POST /api/v1/users/:id/restore.
func (h *UserHandler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.svc.RestoreUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// parseID reads the :id path parameter. On failure it writes a 400 response.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeBadRequest, "invalid id", err))
		return uuid.Nil, false
	}
	return id, true
}
