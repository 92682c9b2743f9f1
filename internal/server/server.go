package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"fc6a_go/internal/config"
	"fc6a_go/internal/csvlog"
	"fc6a_go/internal/discovery"
	"fc6a_go/internal/mqtt"
	"fc6a_go/internal/plc"
	"fc6a_go/internal/poller"
	"fc6a_go/internal/redis"
	"fc6a_go/internal/registry"
	"fc6a_go/internal/render"
	"fc6a_go/internal/store"
	"fc6a_go/internal/websocket"
	"fc6a_go/pkg/logger"
)

// Server encapsula o servidor HTTP com todos os componentes do monitor
type Server struct {
	config           *config.Config
	httpServer       *http.Server
	router           *http.ServeMux
	registry         *registry.Registry
	store            *store.Store
	renderer         *render.Renderer
	poller           *poller.Poller
	redisService     *redis.Service
	csvLogger        *csvlog.Logger
	mqttPublisher    *mqtt.Publisher
	wsHub            *websocket.Hub
	discoveryService *discovery.DiscoveryService
	serverInfo       ServerInfo
}

// ServerInfo contém informações sobre o servidor
type ServerInfo struct {
	IP           string
	Port         int
	StartTime    time.Time
	Connections  int
	Version      string
	WebSocketURL string
	APIURL       string
}

// NewServer cria uma nova instância do servidor
func NewServer(cfg *config.Config) (*Server, error) {
	server := &Server{
		config: cfg,
		router: http.NewServeMux(),
		serverInfo: ServerInfo{
			StartTime: time.Now(),
			Version:   "1.0.0",
			Port:      cfg.Server.Port,
		},
	}

	ip, err := server.getLocalIP()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter IP local: %w", err)
	}
	server.serverInfo.IP = ip

	server.serverInfo.WebSocketURL = fmt.Sprintf("ws://%s:%d/ws", ip, cfg.Server.Port)
	server.serverInfo.APIURL = fmt.Sprintf("http://%s:%d/api", ip, cfg.Server.Port)

	if err := server.initComponents(); err != nil {
		return nil, err
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return server, nil
}

// initComponents inicializa todos os componentes do servidor
func (s *Server) initComponents() error {
	// Validar e registrar os dispositivos configurados. Sem nenhum
	// dispositivo válido não há o que monitorar.
	reg, err := registry.Load(s.config.Devices)
	if err != nil {
		return fmt.Errorf("erro ao carregar dispositivos: %w", err)
	}
	s.registry = reg

	// Resolver o driver de acesso aos CLPs. O driver simulado é sempre
	// registrado; drivers reais se registram na inicialização do processo.
	plc.RegisterSimDriver(s.config.Poller.Sim)
	reader, err := plc.NewReader(s.config.Poller.Driver)
	if err != nil {
		return fmt.Errorf("erro ao resolver driver de CLP: %w", err)
	}

	// Janela rolante compartilhada entre coleta, API e WebSocket
	s.store = store.New(s.config.Poller.WindowSize)

	// Hub WebSocket
	s.wsHub = websocket.NewHub()

	// Renderizador de painéis, transmitindo pelo hub
	s.renderer = render.New(s.wsHub, s.registry.Active())

	// Serviço Redis (modo offline quando indisponível)
	redisService, err := redis.NewService(s.config.Redis, s.config.Poller.WindowSize)
	if err != nil {
		return fmt.Errorf("erro ao inicializar serviço Redis: %w", err)
	}
	s.redisService = redisService

	// Log CSV diário por dispositivo
	if s.config.CSV.Enabled {
		csvLogger, err := csvlog.New(s.config.CSV.Dir)
		if err != nil {
			return fmt.Errorf("erro ao inicializar log CSV: %w", err)
		}
		s.csvLogger = csvLogger
	}

	// Publicador MQTT (inerte quando desabilitado)
	mqttPublisher, err := mqtt.NewPublisher(s.config.MQTT)
	if err != nil {
		logger.Warnf("Erro ao conectar ao broker MQTT: %v. Publicação desabilitada.", err)
		mqttPublisher = nil
	}
	s.mqttPublisher = mqttPublisher

	// Ciclo de coleta
	s.poller = poller.New(s.config.Poller, s.registry.Active(), reader, s.store, s.renderer)
	if s.csvLogger != nil {
		s.poller.AttachCSV(s.csvLogger)
	}
	s.poller.AttachRedis(s.redisService)
	if s.mqttPublisher != nil {
		s.poller.AttachMQTT(s.mqttPublisher)
	}
	s.poller.AttachHub(s.wsHub)

	// O hub responde get_history/get_status com a janela e o status do ciclo
	s.wsHub.SetProviders(s.store, s.poller)
	go s.wsHub.Run()

	// Serviço de descoberta mDNS
	s.discoveryService = discovery.NewDiscoveryService(s.config.Server.Port)

	return nil
}

// Start inicia o servidor e todos os serviços
func (s *Server) Start() error {
	if err := s.discoveryService.Start(); err != nil {
		logger.Warnf("Erro ao iniciar serviço de descoberta: %v", err)
		// Não abortar operação se falhar
	}

	if err := s.poller.Start(); err != nil {
		return fmt.Errorf("erro ao iniciar ciclo de coleta: %w", err)
	}

	s.logServerInfo()

	logger.Infof("Iniciando servidor HTTP na porta %d", s.config.Server.Port)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("erro ao iniciar servidor HTTP: %w", err)
	}

	return nil
}

// Shutdown encerra graciosamente o servidor e todos os serviços
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Iniciando shutdown do servidor")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Erro ao encerrar servidor HTTP: %v", err)
	}

	if s.discoveryService != nil {
		s.discoveryService.Stop()
	}

	if s.poller != nil {
		s.poller.Stop()
	}

	if s.mqttPublisher != nil {
		s.mqttPublisher.Close()
	}

	if s.csvLogger != nil {
		s.csvLogger.Close()
	}

	if s.wsHub != nil {
		s.wsHub.Shutdown()
	}

	if s.redisService != nil {
		s.redisService.Shutdown()
	}

	logger.Info("Shutdown completo")
	return nil
}

// getLocalIP obtém o endereço IP local
func (s *Server) getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "localhost", nil
}

// GetServerInfo retorna informações sobre o servidor
func (s *Server) GetServerInfo() ServerInfo {
	info := s.serverInfo
	info.Connections = s.wsHub.ClientCount()
	return info
}

// logServerInfo exibe informações do servidor no log
func (s *Server) logServerInfo() {
	logger.Info("===============================================")
	logger.Info("             FC6A Trend Monitor                ")
	logger.Info("===============================================")
	logger.Infof("Versão: %s", s.serverInfo.Version)
	logger.Infof("Endereço IP: %s", s.serverInfo.IP)
	logger.Infof("Porta HTTP: %d", s.serverInfo.Port)
	logger.Infof("WebSocket URL: %s", s.serverInfo.WebSocketURL)
	logger.Infof("API URL: %s", s.serverInfo.APIURL)
	logger.Infof("Dispositivos ativos: %d", len(s.registry.Active()))
	logger.Infof("mDNS: %s.%s.%s",
		s.discoveryService.GetInstanceName(),
		discovery.ServiceType,
		discovery.ServiceDomain)
	logger.Info("===============================================")
	logger.Info("Servidor pronto para conexões!")
}
