package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-registry/internal/interface/http"
)

// PageModule serves the HTML pages at the root.
type PageModule struct {
	Handler *handlers.PageHandler
}

func NewPageModule(h *handlers.PageHandler) *PageModule {
	return &PageModule{Handler: h}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Users)
	rg.POST("/", m.Handler.Register)
	rg.GET("/login", m.Handler.LoginForm)
	rg.POST("/login", m.Handler.Login)
}
