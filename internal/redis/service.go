package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
	"fc6a_go/pkg/logger"
)

// Service espelha as séries do monitor no Redis: valor corrente por chave
// simples e histórico por conjunto ordenado, com score no timestamp em
// milissegundos. Opera em modo offline quando o Redis está indisponível ou
// desabilitado, sem nunca travar o ciclo de coleta.
type Service struct {
	client    *redis.Client
	ctx       context.Context
	cancel    context.CancelFunc
	prefix    string
	config    config.RedisConfig
	connected bool
	mutex     sync.RWMutex

	// Tamanho máximo de cada histórico no Redis
	maxHistorySize int
}

// NewService cria um novo serviço Redis
func NewService(cfg config.RedisConfig, maxHistorySize int) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("Serviço Redis desabilitado por configuração")
		return &Service{
			config:         cfg,
			connected:      false,
			maxHistorySize: maxHistorySize,
		}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	service := &Service{
		client:         client,
		ctx:            ctx,
		cancel:         cancel,
		prefix:         cfg.Prefix,
		config:         cfg,
		maxHistorySize: maxHistorySize,
	}

	if err := service.TestConnection(); err != nil {
		logger.Warnf("Aviso: %v. O Redis será utilizado em modo offline.", err)
		service.connected = false
		return service, nil
	}

	service.connected = true
	return service, nil
}

// TestConnection testa a conexão com o Redis
func (s *Service) TestConnection() error {
	if !s.config.Enabled {
		return fmt.Errorf("serviço Redis desabilitado")
	}

	result, err := s.client.Ping(s.ctx).Result()
	if err != nil {
		return fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	logger.Infof("Conexão com o Redis estabelecida. Resposta: %s", result)
	s.connected = true
	return nil
}

// IsConnected verifica se o serviço está conectado
func (s *Service) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.connected && s.config.Enabled
}

// seriesKey monta a chave de valor corrente de uma série
func (s *Service) seriesKey(device, tag string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, device, tag)
}

// WriteSamples escreve as amostras de um tick para um dispositivo: valor
// corrente por tag e entrada no histórico. Amostras nulas não vão para o
// histórico, mas zeram a chave de valor corrente.
func (s *Service) WriteSamples(device models.Device, samples []models.Sample) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	pipe := s.client.Pipeline()

	for i, sample := range samples {
		if i >= len(device.Tags) {
			break
		}
		tag := device.Tags[i].Label
		key := s.seriesKey(device.Name, tag)
		timestamp := sample.Timestamp.UnixNano() / int64(time.Millisecond)

		if sample.Value == nil {
			pipe.Del(s.ctx, key)
			continue
		}

		pipe.Set(s.ctx, key, *sample.Value, 0)

		histKey := fmt.Sprintf("%s:history", key)
		pipe.ZAdd(s.ctx, histKey, &redis.Z{
			Score:  float64(timestamp),
			Member: fmt.Sprintf("%d:%s", timestamp, strconv.FormatFloat(*sample.Value, 'f', -1, 64)),
		})

		// Limitando o tamanho do histórico à janela do monitor
		pipe.ZRemRangeByRank(s.ctx, histKey, 0, int64(-(s.maxHistorySize + 1)))
	}

	_, err := pipe.Exec(s.ctx)
	if err != nil {
		s.mutex.Lock()
		s.connected = false
		s.mutex.Unlock()
		return fmt.Errorf("erro ao escrever amostras no Redis: %w", err)
	}

	return nil
}

// WriteStatus escreve o status do monitor no Redis
func (s *Service) WriteStatus(status models.MonitorStatus) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	pipe := s.client.Pipeline()

	pipe.Set(s.ctx, fmt.Sprintf("%s:status", s.prefix), status.Status, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:estado", s.prefix), status.State, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:ticks", s.prefix), status.Ticks, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix),
		status.Timestamp.UnixNano()/int64(time.Millisecond), 0)

	if status.LastError != "" {
		pipe.Set(s.ctx, fmt.Sprintf("%s:ultimo_erro", s.prefix), status.LastError, 0)
	}

	if status.ErrorCount > 0 {
		pipe.Set(s.ctx, fmt.Sprintf("%s:erros_consecutivos", s.prefix), status.ErrorCount, 0)
	}

	_, err := pipe.Exec(s.ctx)
	if err != nil {
		s.mutex.Lock()
		s.connected = false
		s.mutex.Unlock()
		return fmt.Errorf("erro ao escrever status no Redis: %w", err)
	}

	return nil
}

// GetHistory obtém o histórico de uma série (dispositivo, tag) do Redis
func (s *Service) GetHistory(device, tag string) ([]models.Sample, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	histKey := fmt.Sprintf("%s:history", s.seriesKey(device, tag))
	dataCmd := s.client.ZRangeWithScores(s.ctx, histKey, 0, -1)
	if dataCmd.Err() != nil {
		return nil, fmt.Errorf("erro ao obter histórico da série: %w", dataCmd.Err())
	}

	results := dataCmd.Val()
	history := make([]models.Sample, 0, len(results))

	for _, item := range results {
		member, ok := item.Member.(string)
		if !ok {
			continue
		}

		// Formato do membro: "<timestamp_ms>:<valor>"
		sep := -1
		for i := 0; i < len(member); i++ {
			if member[i] == ':' {
				sep = i
				break
			}
		}
		if sep < 0 {
			continue
		}

		val, err := strconv.ParseFloat(member[sep+1:], 64)
		if err != nil {
			continue
		}

		timestamp := time.Unix(0, int64(item.Score)*int64(time.Millisecond))
		history = append(history, models.Float(timestamp, val))
	}

	return history, nil
}

// Shutdown encerra graciosamente o serviço Redis
func (s *Service) Shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Errorf("Erro ao fechar conexão com Redis: %v", err)
		} else {
			logger.Info("Conexão com o Redis fechada")
		}
	}

	s.connected = false
}
