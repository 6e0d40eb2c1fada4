package playground

import "github.com/gin-gonic/gin"

// Module registers the playground routes.
type Module struct {
	handler *Handler
}

// NewModule creates a Module. It panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("playground.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes mounts the routes under api.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/playground")
	g.GET("/demo", m.handler.Demo)
	g.GET("/accounts", m.handler.Accounts)
	g.GET("/creators", m.handler.Creators)
}
