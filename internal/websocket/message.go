package websocket

import (
	"encoding/json"
	"time"

	"fc6a_go/internal/models"
)

// Funções utilitárias para criação e processamento de mensagens WebSocket

// NewPanelsMessage cria uma nova mensagem com os painéis de um tick
func NewPanelsMessage(panels []models.PanelFrame) *models.PanelsMessage {
	return &models.PanelsMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "panels",
			Timestamp: time.Now(),
		},
		Panels: panels,
	}
}

// NewStatusMessage cria uma nova mensagem de status
func NewStatusMessage(status models.MonitorStatus) *models.StatusMessage {
	return &models.StatusMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "status",
			Timestamp: time.Now(),
		},
		Status:     status.Status,
		State:      status.State,
		LastError:  status.LastError,
		ErrorCount: status.ErrorCount,
	}
}

// NewHistoryMessage cria uma nova mensagem com o histórico de uma série
func NewHistoryMessage(tag, device string, history []models.Sample) *models.HistoryMessage {
	return &models.HistoryMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "history",
			Timestamp: time.Now(),
		},
		Tag:     tag,
		Device:  device,
		History: history,
	}
}

// NewErrorMessage cria uma nova mensagem de erro
func NewErrorMessage(message string, errorCode string) models.WebSocketMessage {
	return models.WebSocketMessage{
		Type:      "error",
		Timestamp: time.Now(),
		Error:     message,
		Data: map[string]string{
			"code": errorCode,
		},
	}
}

// SerializeMessage serializa uma mensagem para JSON
func SerializeMessage(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}

// ParseClientCommand analisa um comando recebido do cliente
func ParseClientCommand(data []byte) (models.CommandMessage, error) {
	var command models.CommandMessage
	err := json.Unmarshal(data, &command)
	return command, err
}

// CreatePongResponse cria uma resposta para um ping do cliente
func CreatePongResponse(pingTime int64) *models.PongMessage {
	return &models.PongMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		},
		Time:       pingTime,
		ServerTime: time.Now().UnixNano() / int64(time.Millisecond),
	}
}
