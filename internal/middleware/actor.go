package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/xboot/internal/domain"
)

// DefaultActorHeader names the header read by Actor when none is configured.
const DefaultActorHeader = "X-Actor"

const maxActorLength = 64

// Actor records the caller named in header as the acting user of the
// request. Repositories read it back with domain.ActorFromContext to fill
// created_by and modify_by. Blank values are ignored and long values are
// truncated to the column size.
func Actor(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultActorHeader
	}
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(header))
		if actor == "" {
			c.Next()
			return
		}
		if len(actor) > maxActorLength {
			actor = actor[:maxActorLength]
		}

		ctx := domain.WithActor(c.Request.Context(), actor)
		ctx = logger.WithContextAttrs(ctx, slog.String("actor", actor))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
