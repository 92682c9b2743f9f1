package plc

import (
	"fmt"
	"sort"
	"sync"

	"fc6a_go/internal/models"
)

// Accessor é a capacidade externa de acesso ao CLP. O protocolo de manutenção
// em si (enquadramento, BCC, socket) pertence ao driver que implementa esta
// interface; o núcleo apenas a consome.
type Accessor interface {
	// Connect abre o contexto de conexão com o dispositivo
	Connect() error
	// ReadFloat lê um float de 32 bits (2 palavras) a partir do registrador D,
	// aplicando troca de palavras conforme a flag do dispositivo
	ReadFloat(addr int, swapped bool) (float64, error)
	// ReadWord lê uma palavra de 16 bits de um registrador D
	ReadWord(addr int) (uint16, error)
	// ReadBit lê um relé M
	ReadBit(addr int) (bool, error)
	// Close encerra o contexto de conexão
	Close() error
}

// Factory constrói um Accessor para um dispositivo
type Factory func(device models.Device) (Accessor, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// RegisterDriver registra uma implementação de Accessor sob um nome.
// Drivers reais do protocolo de manutenção FC6A se registram aqui em
// tempo de inicialização do pacote que os implementa.
func RegisterDriver(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// Driver retorna a factory registrada sob um nome. Um nome desconhecido é
// erro de configuração: o processo deve falhar no startup em vez de buscar
// código em tempo de execução.
func Driver(name string) (Factory, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	factory, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("driver de CLP %q não registrado (disponíveis: %v)", name, driverNames())
	}
	return factory, nil
}

func driverNames() []string {
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ConnectionError indica que o dispositivo está inacessível
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("erro de conexão com %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError indica falha de protocolo/timeout em um registrador específico
type ReadError struct {
	Register string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("erro ao ler %s: %v", e.Register, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
