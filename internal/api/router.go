package api

import (
	"net/http"
	"strings"

	"fc6a_go/internal/redis"
	"fc6a_go/internal/registry"
	"fc6a_go/internal/render"
	"fc6a_go/internal/store"
	"fc6a_go/pkg/logger"
)

// Router gerencia as rotas da API
type Router struct {
	handler     *Handler
	mux         *http.ServeMux
	basePath    string
	middlewares []Middleware
}

// NewRouter cria um novo router para a API
func NewRouter(status StatusProvider, reg *registry.Registry, renderer *render.Renderer, st *store.Store, redisService *redis.Service, basePath string) *Router {
	handler := NewHandler(status, reg, renderer, st, redisService)

	// Normalizar base path
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if basePath != "" && strings.HasSuffix(basePath, "/") {
		basePath = basePath[:len(basePath)-1]
	}

	middlewares := []Middleware{
		LoggingMiddleware,
		RecoveryMiddleware,
		CorsMiddleware,
	}

	return &Router{
		handler:     handler,
		mux:         http.NewServeMux(),
		basePath:    basePath,
		middlewares: middlewares,
	}
}

// Setup configura todas as rotas
func (r *Router) Setup() {
	// Status do ciclo de coleta
	r.mux.Handle(r.path("/status"), r.applyMiddleware(http.HandlerFunc(r.handler.GetStatus)))

	// Dispositivos ativos e suas tags
	r.mux.Handle(r.path("/devices"), r.applyMiddleware(http.HandlerFunc(r.handler.GetDevices)))

	// Painéis do último tick
	r.mux.Handle(r.path("/panels"), r.applyMiddleware(http.HandlerFunc(r.handler.GetPanels)))

	// Histórico de uma série: /history/{device}/{tag}
	r.mux.Handle(r.path("/history/"), r.applyMiddleware(http.HandlerFunc(r.handler.GetHistory)))

	logger.Infof("API configurada com base path: %s", r.basePath)
}

// Handler retorna o handler HTTP final com todos os middlewares aplicados
func (r *Router) Handler() http.Handler {
	return r.applyMiddleware(r.mux)
}

// AddMiddleware adiciona um novo middleware
func (r *Router) AddMiddleware(middleware Middleware) {
	r.middlewares = append(r.middlewares, middleware)
}

// path retorna o caminho completo para uma rota
func (r *Router) path(route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return r.basePath + route
}

// applyMiddleware aplica todos os middlewares ao handler
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	if len(r.middlewares) == 0 {
		return handler
	}

	return Chain(r.middlewares...)(handler)
}

// ServeHTTP implementa a interface http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := r.Handler()
	handler.ServeHTTP(w, req)
}
