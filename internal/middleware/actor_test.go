package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"github.com/stretchr/testify/assert"

	"github.com/simp-lee/xboot/internal/domain"
)

func actorRouter(header string) *gin.Engine {
	r := gin.New()
	r.Use(Actor(header))
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := domain.ActorFromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "<none>")
			return
		}
		c.String(http.StatusOK, actor+"|"+findAttrValue(logger.FromContext(c.Request.Context()), "actor"))
	})
	return r
}

func TestActor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		sent   map[string]string
		want   string
	}{
		{"default header", "", map[string]string{"X-Actor": "alice"}, "alice|alice"},
		{"custom header", "X-User", map[string]string{"X-User": "bob"}, "bob|bob"},
		{"custom header ignores default", "X-User", map[string]string{"X-Actor": "alice"}, "<none>"},
		{"blank value", "", map[string]string{"X-Actor": "   "}, "<none>"},
		{"trimmed", "", map[string]string{"X-Actor": " carol "}, "carol|carol"},
		{"missing", "", nil, "<none>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(actorRouter(tt.header), http.MethodGet, "/whoami", tt.sent)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestActor_Truncates(t *testing.T) {
	long := strings.Repeat("x", 100)

	w := do(actorRouter(""), http.MethodGet, "/whoami", map[string]string{"X-Actor": long})

	actor, _, _ := strings.Cut(w.Body.String(), "|")
	assert.Len(t, actor, 64)
}
