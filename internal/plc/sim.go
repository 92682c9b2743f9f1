package plc

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
	"fc6a_go/pkg/utils"
)

// simAccessor é um dispositivo virtual para operar o monitor sem hardware.
// Gera formas de onda determinísticas por registrador, com falhas e latência
// artificiais configuráveis.
type simAccessor struct {
	device      models.Device
	failureRate float64
	latency     time.Duration
	start       time.Time
	rng         *rand.Rand
	mu          sync.Mutex
	connected   bool
}

// RegisterSimDriver registra o driver simulado sob o nome "sim"
func RegisterSimDriver(cfg config.SimConfig) {
	RegisterDriver("sim", func(device models.Device) (Accessor, error) {
		return &simAccessor{
			device:      device,
			failureRate: cfg.FailureRate,
			latency:     cfg.Latency,
			start:       time.Now(),
			rng:         rand.New(rand.NewSource(seedFor(device.Name))),
		}, nil
	})
}

// seedFor deriva uma semente estável do nome do dispositivo
func seedFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

func (s *simAccessor) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *simAccessor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

// step aplica latência e falha artificiais antes de cada leitura
func (s *simAccessor) step(register string) error {
	s.mu.Lock()
	connected := s.connected
	fail := s.failureRate > 0 && s.rng.Float64() < s.failureRate
	s.mu.Unlock()

	if !connected {
		return &ConnectionError{Device: s.device.Name, Err: fmt.Errorf("não conectado")}
	}
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	if fail {
		return &ReadError{Register: register, Err: fmt.Errorf("falha simulada")}
	}
	return nil
}

// ReadFloat gera uma senoide lenta em torno de uma base derivada do endereço.
// O valor passa pela codificação em palavras do FC6A, respeitando a ordem
// configurada, como faria uma leitura real.
func (s *simAccessor) ReadFloat(addr int, swapped bool) (float64, error) {
	if err := s.step(fmt.Sprintf("D%04d", addr)); err != nil {
		return 0, err
	}

	elapsed := time.Since(s.start).Seconds()
	base := float64(addr%100) + 20.0
	period := 60.0 + float64(addr%7)*10.0
	val := float32(base + 5.0*math.Sin(2*math.Pi*elapsed/period))

	first, second := utils.Float32ToWords(val, swapped)
	return float64(utils.WordsToFloat32(first, second, swapped)), nil
}

// ReadWord gera uma rampa com período de uma hora
func (s *simAccessor) ReadWord(addr int) (uint16, error) {
	if err := s.step(fmt.Sprintf("D%04d", addr)); err != nil {
		return 0, err
	}

	elapsed := int(time.Since(s.start).Seconds())
	return uint16((elapsed + addr) % 3600), nil
}

// ReadBit alterna a cada 30 segundos, defasado pelo endereço
func (s *simAccessor) ReadBit(addr int) (bool, error) {
	if err := s.step(fmt.Sprintf("M%04d", addr)); err != nil {
		return false, err
	}

	elapsed := int(time.Since(s.start).Seconds())
	return ((elapsed+addr)/30)%2 == 0, nil
}
