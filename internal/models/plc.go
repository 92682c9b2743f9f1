package models

import "time"

// TagKind identifica o tipo de dado de um registrador monitorado
type TagKind string

const (
	// TagBit é um relé M lido como 0/1
	TagBit TagKind = "bit"
	// TagWord é um registrador D de 16 bits sem sinal
	TagWord TagKind = "word"
	// TagFloat é um par de registradores D interpretado como IEEE-754 de 32 bits
	TagFloat TagKind = "float"
)

// Tag representa um registrador monitorado em um dispositivo
type Tag struct {
	Label    string  `json:"label"`    // Rótulo exibido nos painéis (chave de agrupamento)
	Register string  `json:"register"` // Endereço original, ex: "D0200" ou "M0012"
	Area     string  `json:"area"`     // Área de memória: "D" ou "M"
	Addr     int     `json:"addr"`     // Endereço numérico dentro da área
	Kind     TagKind `json:"kind"`
}

// Device representa um CLP FC6A monitorado. Imutável após o carregamento.
type Device struct {
	Name    string `json:"name"`    // Único, até 20 caracteres alfanuméricos/underscore
	Address string `json:"address"` // Endereço IPv4
	Swapped bool   `json:"swapped"` // Troca de palavras na decodificação de floats
	Tags    []Tag  `json:"tags"`
}

// Sample é uma amostra de um tick. Value nil indica leitura falhada;
// a amostra é registrada mesmo assim para manter os eixos de tempo alinhados.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

// Float cria um Sample com valor preenchido
func Float(ts time.Time, v float64) Sample {
	return Sample{Timestamp: ts, Value: &v}
}

// Null cria um Sample de leitura falhada
func Null(ts time.Time) Sample {
	return Sample{Timestamp: ts}
}

// MonitorStatus representa o status atual do monitor
type MonitorStatus struct {
	Status     string    `json:"status"`
	State      string    `json:"state"` // Estado atual do escalonador de coleta
	Timestamp  time.Time `json:"timestamp"`
	Ticks      int64     `json:"ticks"`
	LastError  string    `json:"lastError,omitempty"`
	ErrorCount int       `json:"errorCount,omitempty"`
}

// SeriesFrame é a sobreposição de um dispositivo dentro de um painel
type SeriesFrame struct {
	Device     string     `json:"device"`
	Color      string     `json:"color"`
	Timestamps []int64    `json:"timestamps"` // Epoch em milissegundos, alinhado à cauda do buffer global
	Values     []*float64 `json:"values"`
}

// PanelFrame é um painel completo (um por rótulo de tag), redesenhado a cada tick
type PanelFrame struct {
	Tag    string        `json:"tag"`
	Series []SeriesFrame `json:"series"`
}
