package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/repository"
)

// PageLimits bounds the page size accepted from clients.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits applies when no configuration is wired in.
var DefaultPageLimits = PageLimits{DefaultSize: 20, MaxSize: 100}

// reservedParams lists query parameter names used for paging and ordering, not for filtering.
var reservedParams = map[string]bool{
	"pageIndex": true,
	"pageSize":  true,
	"pageCount": true,
	"order":     true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts paging, ordering and filtering parameters from
// the query string. pageCount is accepted as an alias of pageSize. A missing
// or malformed size falls back to limits.DefaultSize and sizes above
// limits.MaxSize are clamped; explicit non-positive sizes are passed through
// and treated as 1 by the repository.
func ParsePageRequest(c *gin.Context, limits PageLimits) domain.PageRequest {
	if limits.DefaultSize <= 0 {
		limits.DefaultSize = DefaultPageLimits.DefaultSize
	}
	if limits.MaxSize <= 0 {
		limits.MaxSize = DefaultPageLimits.MaxSize
	}

	pageIndex, err := strconv.Atoi(c.Query("pageIndex"))
	if err != nil || pageIndex < 1 {
		pageIndex = 1
	}

	rawSize := c.Query("pageSize")
	if rawSize == "" {
		rawSize = c.Query("pageCount")
	}
	pageSize, err := strconv.Atoi(rawSize)
	if err != nil {
		pageSize = limits.DefaultSize
	}
	if pageSize > limits.MaxSize {
		pageSize = limits.MaxSize
	}

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		PageIndex: pageIndex,
		PageSize:  pageSize,
		Order:     c.Query("order"),
		Filter:    filter,
	}
}

// Orders parses req.Order ("field desc, other") and keeps only allowed
// columns. A malformed order string yields no ordering.
func Orders(req domain.PageRequest, allowed []string) []repository.Order {
	orders, err := repository.ParseOrder(req.Order)
	if err != nil {
		return nil
	}
	return slices.DeleteFunc(orders, func(o repository.Order) bool {
		return !isAllowed(o.Column, allowed)
	})
}

// Filter returns a predicate that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" produce a LIKE '%value%' condition; others use exact match.
func Filter(req domain.PageRequest, allowed []string) repository.Predicate {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, like := strings.CutSuffix(key, "__like")
			if !validFieldName.MatchString(field) || !isAllowed(field, allowed) {
				continue
			}
			if like {
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			} else {
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
