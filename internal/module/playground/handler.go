// Package playground exposes read-only demo endpoints over the user table,
// one per paging strategy of the repository package.
package playground

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/pkg"
	"github.com/simp-lee/xboot/internal/repository"
)

// AccountRow is one row of the string-built account listing.
type AccountRow struct {
	ID        uuid.UUID `json:"id"`
	Account   string    `json:"account"`
	CreatedBy *string   `json:"createdBy"`
}

// CreatorCount is the number of live users created by one actor.
type CreatorCount struct {
	CreatedBy *string `json:"createdBy"`
	Users     int64   `json:"users"`
}

// Handler serves the playground endpoints.
type Handler struct {
	users    *repository.Repository[domain.User]
	limits   pkg.PageLimits
	maxCount int
}

// NewHandler creates a Handler. maxCount caps the rows reachable through
// Accounts; zero means no cap.
func NewHandler(users *repository.Repository[domain.User], limits pkg.PageLimits, maxCount int) *Handler {
	return &Handler{users: users, limits: limits, maxCount: maxCount}
}

// Demo handles GET /api/playground/demo?pageIndex=1&pageCount=10.
func (h *Handler) Demo(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.limits)

	page, err := h.users.Page(c.Request.Context(), nil, req.PageIndex, req.PageSize)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// Accounts handles GET /api/playground/accounts. Every clause is a constant;
// only the paging numbers come from the request.
func (h *Handler) Accounts(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.limits)

	rows, total, err := repository.PageListInto[AccountRow](c.Request.Context(), h.users.SQL(), repository.SQLPage{
		Table:     domain.User{}.TableName(),
		Columns:   "id, account, created_by",
		Where:     "is_deleted IS NULL OR is_deleted = ?",
		WhereArgs: []any{false},
		OrderBy:   "account, id",
		PageIndex: req.PageIndex,
		PageSize:  req.PageSize,
		MaxCount:  h.maxCount,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, domain.NewPage(rows, total, req.PageIndex, req.PageSize))
}

// Creators handles GET /api/playground/creators.
func (h *Handler) Creators(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.limits)

	page, err := repository.GroupedPage[domain.User, CreatorCount](c.Request.Context(), h.users, nil, repository.GroupQuery{
		GroupBy:   []string{domain.ColumnCreatedBy},
		Select:    []string{domain.ColumnCreatedBy, "COUNT(*) AS users"},
		Orders:    []repository.Order{repository.Desc("users"), repository.Asc(domain.ColumnCreatedBy)},
		PageIndex: req.PageIndex,
		PageSize:  req.PageSize,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}
