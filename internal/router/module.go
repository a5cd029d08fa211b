package router

import "github.com/gin-gonic/gin"

// Module is one feature area (requests, users, blogs, funds) that registers
// its own routes and rate limits on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
