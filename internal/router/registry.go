package router

import "github.com/gin-gonic/gin"

// Registry collects modules and mounts them on the JSON API group (/api) or
// on the engine root for HTML pages.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Pages       *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	pages       []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{
		Engine: engine,
		API:    engine.Group("/api"),
		Pages:  engine.Group("/"),
	}
}

// Use adds middleware applied to both groups.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) AddPages(mod Module) {
	r.pages = append(r.pages, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
		r.Pages.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.pages {
		m.Register(r.Pages)
	}
}
