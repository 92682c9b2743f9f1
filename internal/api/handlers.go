package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fc6a_go/internal/models"
	"fc6a_go/internal/redis"
	"fc6a_go/internal/registry"
	"fc6a_go/internal/render"
	"fc6a_go/internal/store"
	"fc6a_go/pkg/logger"
)

// StatusProvider devolve o status corrente do ciclo de coleta
type StatusProvider interface {
	GetStatus() models.MonitorStatus
}

// Handler contém os handlers HTTP para a API
type Handler struct {
	status   StatusProvider
	registry *registry.Registry
	renderer *render.Renderer
	store    *store.Store
	redis    *redis.Service
}

// NewHandler cria um novo handler de API
func NewHandler(status StatusProvider, reg *registry.Registry, renderer *render.Renderer, st *store.Store, redisService *redis.Service) *Handler {
	return &Handler{
		status:   status,
		registry: reg,
		renderer: renderer,
		store:    st,
		redis:    redisService,
	}
}

// GetStatus retorna o status atual do monitor
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	status := h.status.GetStatus()

	response := map[string]interface{}{
		"status":    status.Status,
		"state":     status.State,
		"ticks":     status.Ticks,
		"timestamp": status.Timestamp.UnixNano() / int64(time.Millisecond),
	}

	if status.LastError != "" {
		response["lastError"] = status.LastError
	}
	if status.ErrorCount > 0 {
		response["errorCount"] = status.ErrorCount
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetDevices retorna os dispositivos ativos e suas tags
func (h *Handler) GetDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	devices := h.registry.Active()
	response := make([]map[string]interface{}, 0, len(devices))
	for _, dev := range devices {
		tags := make([]map[string]string, 0, len(dev.Tags))
		for _, tag := range dev.Tags {
			tags = append(tags, map[string]string{
				"label":    tag.Label,
				"register": tag.Register,
				"type":     string(tag.Kind),
			})
		}
		response = append(response, map[string]interface{}{
			"name":    dev.Name,
			"address": dev.Address,
			"color":   h.renderer.Color(dev.Name),
			"tags":    tags,
		})
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetPanels retorna os painéis do último tick renderizado
func (h *Handler) GetPanels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	panels := h.renderer.LastPanels()
	if panels == nil {
		panels = []models.PanelFrame{}
	}

	h.respondWithJSON(w, http.StatusOK, panels)
}

// GetHistory retorna o histórico de uma série (dispositivo, tag).
// Rota: /history/{device}/{tag}
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		h.respondWithError(w, http.StatusBadRequest, "Dispositivo e tag não fornecidos")
		return
	}

	device := parts[len(parts)-2]
	tag := parts[len(parts)-1]

	if _, ok := h.registry.Find(device); !ok {
		h.respondWithError(w, http.StatusNotFound, fmt.Sprintf("Dispositivo desconhecido: %s", device))
		return
	}

	var history []models.Sample

	// Preferir o Redis quando disponível; senão, a janela em memória
	if h.redis != nil && h.redis.IsConnected() {
		redisHistory, err := h.redis.GetHistory(device, tag)
		if err == nil {
			history = redisHistory
		}
	}
	if history == nil {
		history = h.store.SnapshotFor(tag)[device]
	}
	if history == nil {
		history = []models.Sample{}
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"device":  device,
		"tag":     tag,
		"history": history,
	})
}

// respondWithError responde com erro em formato JSON
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON responde com JSON
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Erro ao codificar resposta JSON: %v", err)
		fmt.Fprintf(w, `{"error":"Erro interno ao processar resposta"}`)
	}
}
