package server

import (
	"encoding/json"
	"net/http"
	"time"

	"fc6a_go/internal/api"
	"fc6a_go/internal/discovery"
	"fc6a_go/internal/websocket"
	"fc6a_go/pkg/logger"
	"fc6a_go/pkg/utils"
)

// setupRoutes configura todas as rotas do servidor
func (s *Server) setupRoutes() {
	wsHandler := websocket.NewHandler(s.wsHub)

	// API REST com middleware próprio (logging, recovery, CORS)
	apiRouter := api.NewRouter(s.poller, s.registry, s.renderer, s.store, s.redisService, "/api")
	apiRouter.Setup()
	s.router.Handle("/api/", apiRouter)

	// Endpoint de saúde
	s.router.HandleFunc("/health", s.healthHandler)

	// Endpoint de informações do servidor
	s.router.HandleFunc("/info", s.infoHandler)

	// Endpoint de descoberta manual
	s.router.HandleFunc("/discover", s.discoverHandler)

	// WebSocket
	s.router.Handle("/ws", wsHandler)
	s.router.HandleFunc("/ws/health", wsHandler.GetHealthHandler())

	// Middleware para logging e CORS das rotas restantes
	s.wrapWithMiddleware()
}

// healthHandler responde com o status de saúde do servidor
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pollerStatus := "ok"
	if s.poller != nil && !s.poller.IsRunning() {
		pollerStatus = "offline"
	}

	redisStatus := "disabled"
	if s.config.Redis.Enabled {
		if s.redisService != nil && s.redisService.IsConnected() {
			redisStatus = "ok"
		} else {
			redisStatus = "offline"
		}
	}

	csvStatus := "disabled"
	if s.config.CSV.Enabled {
		csvStatus = "ok"
	}

	mqttStatus := "disabled"
	if s.config.MQTT.Enabled {
		if s.mqttPublisher != nil {
			mqttStatus = "ok"
		} else {
			mqttStatus = "offline"
		}
	}

	discoveryStatus := "ok"
	if s.discoveryService != nil && !s.discoveryService.IsRunning() {
		discoveryStatus = "offline"
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"services": map[string]string{
			"poller":    pollerStatus,
			"redis":     redisStatus,
			"csv":       csvStatus,
			"mqtt":      mqttStatus,
			"websocket": "ok",
			"discovery": discoveryStatus,
		},
	}

	// O ciclo de coleta é o serviço crítico
	if pollerStatus == "offline" {
		response["status"] = "degraded"
	}

	json.NewEncoder(w).Encode(response)
}

// infoHandler retorna informações básicas sobre o servidor
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	info := s.GetServerInfo()
	uptime := time.Since(info.StartTime)

	response := map[string]interface{}{
		"name":        "FC6A Trend Monitor",
		"version":     info.Version,
		"ip":          info.IP,
		"port":        info.Port,
		"websocket":   info.WebSocketURL,
		"api":         info.APIURL,
		"startTime":   info.StartTime,
		"uptime":      utils.FormatDuration(uptime),
		"connections": info.Connections,
		"devices":     len(s.registry.Active()),
		"interval":    s.config.Poller.Interval.String(),
		"windowSize":  s.config.Poller.WindowSize,
	}

	json.NewEncoder(w).Encode(response)
}

// discoverHandler fornece informações para descoberta manual
func (s *Server) discoverHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	info := s.GetServerInfo()

	response := map[string]interface{}{
		"name":        "FC6A Trend Monitor",
		"ip":          info.IP,
		"port":        info.Port,
		"wsUrl":       info.WebSocketURL,
		"apiUrl":      info.APIURL,
		"version":     info.Version,
		"wsEndpoint":  "/ws",
		"apiEndpoint": "/api",
		"mdns":        discovery.ServiceType,
	}

	json.NewEncoder(w).Encode(response)
}

// wrapWithMiddleware adiciona middleware às rotas
func (s *Server) wrapWithMiddleware() {
	originalHandler := s.router

	s.router = http.NewServeMux()

	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		logger.Debugf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)

		originalHandler.ServeHTTP(w, r)

		duration := time.Since(start)
		logger.Debugf("Requisição %s %s completada em %v", r.Method, r.URL.Path, duration)
	})
}
