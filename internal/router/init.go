package router

import (
	"github.com/oksasatya/go-user-registry/internal/container"
	handlers "github.com/oksasatya/go-user-registry/internal/interface/http"
	"github.com/oksasatya/go-user-registry/internal/router/modules"
)

// InitModules wires the user API, the HTML pages and the debug endpoint from
// the container. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	svc := c.Service()
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc, c.Logger)))
	r.Add(modules.NewDebugModule())
	r.AddPages(modules.NewPageModule(handlers.NewPageHandler(svc, c.Logger, c.Config.AppName)))
}
