package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fc6a_go/internal/config"
	"fc6a_go/internal/server"
	"fc6a_go/pkg/logger"
)

func main() {
	// Variáveis de ambiente locais (.env), se presentes
	godotenv.Load()

	// Configurar diretório de logs
	logDir := filepath.Join(".", "logs")
	os.MkdirAll(logDir, 0755)

	// Inicializar logger
	logger.Init()
	logger.SetLevel(logger.INFO)
	logger.EnableFileLogging(logDir, "fc6a")
	defer logger.Sync()

	displayBanner()

	logger.Info("Iniciando FC6A Trend Monitor")

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Erro ao carregar configurações", err)
	}

	logger.Infof("Configuração carregada: %d dispositivos, driver %q, intervalo %v, janela %d amostras",
		len(cfg.Devices), cfg.Poller.Driver, cfg.Poller.Interval, cfg.Poller.WindowSize)

	// Criar e iniciar o servidor
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Erro ao criar servidor", err)
	}

	// Iniciar o servidor em uma goroutine separada
	go func() {
		logger.Infof("Servidor iniciado na porta %d", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Fatal("Erro ao iniciar o servidor", err)
		}
	}()

	// Captura de sinais para shutdown gracioso, apenas entre ticks
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Desligando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Erro durante o shutdown do servidor", err)
	}

	logger.Info("Monitor encerrado com sucesso")
}

// displayBanner exibe um banner de inicialização
func displayBanner() {
	banner := `
 _______ _______  ______ _______      _______  ______ _______ __   _ ______
 |______ |       |  ____ |_____|         |    |_____/ |______ | \  | |     \
 |       |_____  |_____| |     |         |    |    \_ |______ |  \_| |_____/

                                                  FC6A TREND MONITOR  v1.0
 `
	fmt.Println(banner)
	fmt.Printf("Iniciando em %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
}
