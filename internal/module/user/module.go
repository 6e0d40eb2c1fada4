package user

import "github.com/gin-gonic/gin"

// UserModule registers the user API.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a UserModule. It panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes mounts the user routes under api.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/v1/users")
	users.POST("", m.handler.Create)
	users.GET("", m.handler.List)
	users.POST("/batch-delete", m.handler.BatchDelete)
	users.GET("/:id", m.handler.Get)
	users.PUT("/:id", m.handler.Update)
	users.DELETE("/:id", m.handler.Delete)
	users.DELETE("/:id/purge", m.handler.Purge)
	users.POST("/:id/restore", m.handler.Restore)
}
