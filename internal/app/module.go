package app

import "github.com/gin-gonic/gin"

// Module is a self-registering API module. Routes are mounted under /api.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
