package config

import "time"

// getDefaultConfig retorna uma configuração padrão
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Poller: PollerConfig{
			Interval:   1 * time.Second,
			WindowSize: 3600, // uma hora a 1 Hz
			Driver:     "sim",
			Sim: SimConfig{
				FailureRate: 0,
				Latency:     0,
			},
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			Prefix:   "fc6a_trend",
			Enabled:  false,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			ClientID:    "fc6a-trend-monitor",
			TopicPrefix: "fc6a/trend",
			QoS:         0,
		},
		CSV: CSVConfig{
			Enabled: true,
			Dir:     "./logs",
		},
		Devices: []DeviceConfig{
			{
				Name:    "PLC_01",
				Address: "10.10.10.10",
				Swapped: false,
				Tags: []TagConfig{
					{Label: "Temp", Register: "D0200", Type: "float"},
					{Label: "Pressao", Register: "D0204", Type: "word"},
					{Label: "Bomba", Register: "M0012", Type: "bit"},
				},
			},
		},
	}
}
