package router

import "github.com/gin-gonic/gin"

// Module registers its routes on the group it is mounted on: /api for
// JSON modules added with Add, the root for pages added with AddPages.
type Module interface {
	Register(rg *gin.RouterGroup)
}
