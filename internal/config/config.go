package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server  ServerConfig   `json:"server"`
	Poller  PollerConfig   `json:"poller"`
	Redis   RedisConfig    `json:"redis"`
	MQTT    MQTTConfig     `json:"mqtt"`
	CSV     CSVConfig      `json:"csv"`
	Devices []DeviceConfig `json:"devices"`
}

// ServerConfig contém configurações do servidor HTTP/WebSocket
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// PollerConfig contém configurações do ciclo de coleta
type PollerConfig struct {
	Interval   time.Duration `json:"interval"`   // Cadência nominal entre ticks
	WindowSize int           `json:"windowSize"` // Tamanho da janela rolante (amostras por série)
	Driver     string        `json:"driver"`     // Nome do driver de acesso ao CLP ("sim", "fc6a", ...)
	Sim        SimConfig     `json:"sim"`
}

// SimConfig contém configurações do driver simulado
type SimConfig struct {
	FailureRate float64       `json:"failureRate"` // Fração de leituras que falham artificialmente (0..1)
	Latency     time.Duration `json:"latency"`     // Latência artificial por leitura
}

// RedisConfig contém configurações do Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	Enabled  bool   `json:"enabled"`
}

// MQTTConfig contém configurações do publicador MQTT (opcional)
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"` // ex: tcp://localhost:1883
	ClientID    string `json:"clientId"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topicPrefix"`
	QoS         byte   `json:"qos"`
}

// CSVConfig contém configurações do log CSV diário por dispositivo
type CSVConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
}

// DeviceConfig é o registro bruto de um dispositivo, validado pelo registry
type DeviceConfig struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Swapped bool        `json:"swapped"`
	Tags    []TagConfig `json:"tags"`
}

// TagConfig é o registro bruto de um registrador monitorado
type TagConfig struct {
	Label    string `json:"label"`
	Register string `json:"register"` // [D|M]NNNN
	Type     string `json:"type"`     // "bit", "word" ou "float"
}

// Load carrega a configuração do arquivo ou usa valores padrão
func Load() (*Config, error) {
	return LoadFile("config.json")
}

// LoadFile carrega a configuração de um arquivo específico
func LoadFile(path string) (*Config, error) {
	config := getDefaultConfig()

	if _, err := os.Stat(path); err == nil {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	}

	applyEnvironmentOverrides(&config)

	return &config, nil
}

// applyEnvironmentOverrides sobrescreve configurações com variáveis de ambiente
func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Poller.Interval = d
		}
	}
	if v := os.Getenv("PLC_DRIVER"); v != "" {
		config.Poller.Driver = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		config.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		config.MQTT.Broker = v
		config.MQTT.Enabled = true
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		config.CSV.Dir = v
	}
}
