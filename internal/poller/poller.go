package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fc6a_go/internal/config"
	"fc6a_go/internal/csvlog"
	"fc6a_go/internal/models"
	"fc6a_go/internal/mqtt"
	"fc6a_go/internal/redis"
	"fc6a_go/internal/store"
	"fc6a_go/pkg/logger"
)

// State é o estado corrente do escalonador de coleta
type State int

const (
	// StateIdle antes do primeiro tick
	StateIdle State = iota
	// StateReading durante a varredura dos dispositivos
	StateReading
	// StateRendering durante a reconstrução dos painéis
	StateRendering
	// StateSleeping entre ticks
	StateSleeping
	// StateStopped após interrupção
	StateStopped
)

// String retorna o nome do estado
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateRendering:
		return "rendering"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// DeviceReader varre todas as tags de um dispositivo em um tick
type DeviceReader interface {
	ReadDevice(ts time.Time, device models.Device) []models.Sample
}

// PanelRenderer reconstrói os painéis a partir do snapshot de um tick
type PanelRenderer interface {
	Render(snapshot map[string]map[string][]models.Sample, timestamps []time.Time) []models.PanelFrame
}

// StatusBroadcaster entrega atualizações de status aos dashboards
type StatusBroadcaster interface {
	BroadcastStatus(status models.MonitorStatus)
}

// Poller executa o ciclo de coleta: a cada tick varre todos os dispositivos
// ativos, registra as amostras na janela rolante, apara e renderiza. A
// cadência é fixa e não corrigida: o intervalo completo é aguardado após o
// trabalho do tick, então a duração real de um ciclo é intervalo + trabalho.
// A interrupção só é atendida entre ticks, nunca no meio de um.
type Poller struct {
	interval time.Duration
	window   int
	devices  []models.Device
	reader   DeviceReader
	store    *store.Store
	renderer PanelRenderer

	// Destinos opcionais, todos tolerantes a nil
	csv   *csvlog.Logger
	redis *redis.Service
	mqtt  *mqtt.Publisher
	hub   StatusBroadcaster

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running bool
	state   State
	status  models.MonitorStatus
}

// New cria um Poller para os dispositivos ativos dados
func New(cfg config.PollerConfig, devices []models.Device, reader DeviceReader, st *store.Store, renderer PanelRenderer) *Poller {
	return &Poller{
		interval: cfg.Interval,
		window:   cfg.WindowSize,
		devices:  devices,
		reader:   reader,
		store:    st,
		renderer: renderer,
		state:    StateIdle,
		status: models.MonitorStatus{
			Status:    "iniciando",
			State:     StateIdle.String(),
			Timestamp: time.Now(),
		},
	}
}

// AttachCSV conecta o log CSV diário ao ciclo de coleta
func (p *Poller) AttachCSV(l *csvlog.Logger) {
	p.csv = l
}

// AttachRedis conecta o espelho Redis ao ciclo de coleta
func (p *Poller) AttachRedis(s *redis.Service) {
	p.redis = s
}

// AttachMQTT conecta o publicador MQTT ao ciclo de coleta
func (p *Poller) AttachMQTT(pub *mqtt.Publisher) {
	p.mqtt = pub
}

// AttachHub conecta o hub WebSocket para broadcasts de status
func (p *Poller) AttachHub(hub StatusBroadcaster) {
	p.hub = hub
}

// Start inicia o ciclo de coleta em uma goroutine própria
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("ciclo de coleta já em execução")
	}
	if len(p.devices) == 0 {
		return fmt.Errorf("nenhum dispositivo ativo para coletar")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.running = true

	p.wg.Add(1)
	go p.runLoop()

	logger.Infof("Ciclo de coleta iniciado: %d dispositivos, intervalo %v, janela %d amostras",
		len(p.devices), p.interval, p.window)
	return nil
}

// Stop interrompe o ciclo de coleta e aguarda o tick corrente terminar
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.state = StateStopped
	p.status.State = StateStopped.String()
	p.mu.Unlock()
}

// IsRunning verifica se o ciclo está em execução
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// State retorna o estado corrente do escalonador
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// GetStatus retorna o status corrente do monitor
func (p *Poller) GetStatus() models.MonitorStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// runLoop é o laço principal: tick, depois dormir o intervalo inteiro. O
// tempo gasto no tick não é descontado do intervalo.
func (p *Poller) runLoop() {
	defer p.wg.Done()

	for {
		p.tick()

		select {
		case <-p.ctx.Done():
			logger.Info("Ciclo de coleta encerrado graciosamente")
			return
		case <-time.After(p.interval):
		}
	}
}

// tick executa uma varredura completa: um timestamp lógico, todas as tags de
// todos os dispositivos, aparo e redesenho
func (p *Poller) tick() {
	ts := time.Now()
	p.setState(StateReading)

	p.store.AppendTimestamp(ts)

	failures := 0
	for _, dev := range p.devices {
		samples := p.reader.ReadDevice(ts, dev)

		for i, tag := range dev.Tags {
			p.store.Append(tag.Label, dev.Name, samples[i])
			if samples[i].Value == nil {
				failures++
			}
		}

		if p.csv != nil {
			if err := p.csv.Append(ts, dev, samples); err != nil {
				logger.Errorf("Erro no log CSV de %s: %v", dev.Name, err)
			}
		}

		if p.redis != nil {
			// Escrita assíncrona: o Redis nunca atrasa o tick
			go func(dev models.Device, samples []models.Sample) {
				if err := p.redis.WriteSamples(dev, samples); err != nil {
					logger.Debugf("Erro ao espelhar amostras no Redis: %v", err)
				}
			}(dev, samples)
		}

		if p.mqtt != nil {
			p.mqtt.PublishSamples(dev, samples)
		}
	}

	p.store.TrimAll(p.window)

	p.setState(StateRendering)
	p.renderer.Render(p.store.Snapshot(), p.store.Timestamps())

	p.updateStatus(ts, failures)
	p.setState(StateSleeping)
}

// setState atualiza o estado do escalonador
func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.status.State = s.String()
	p.mu.Unlock()
}

// updateStatus consolida o status do tick e o propaga
func (p *Poller) updateStatus(ts time.Time, failures int) {
	p.mu.Lock()
	p.status.Ticks++
	p.status.Timestamp = ts
	if failures > 0 {
		p.status.Status = "degradado"
		p.status.LastError = fmt.Sprintf("%d leituras falharam no último tick", failures)
		p.status.ErrorCount += failures
	} else {
		p.status.Status = "ok"
		p.status.LastError = ""
	}
	status := p.status
	p.mu.Unlock()

	if p.hub != nil {
		p.hub.BroadcastStatus(status)
	}

	if p.redis != nil {
		go func() {
			if err := p.redis.WriteStatus(status); err != nil {
				logger.Debugf("Erro ao espelhar status no Redis: %v", err)
			}
		}()
	}
}
