package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
	"fc6a_go/pkg/logger"
)

// Publisher publica as amostras de cada tick em um broker MQTT, um tópico por
// série: <prefixo>/<dispositivo>/<tag>. Quando desabilitado, é inerte.
type Publisher struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	enabled bool
}

// samplePayload é o corpo JSON publicado por série a cada tick
type samplePayload struct {
	Device    string   `json:"device"`
	Tag       string   `json:"tag"`
	Value     *float64 `json:"value"`
	Timestamp int64    `json:"timestamp"` // milissegundos
}

// NewPublisher cria um publicador MQTT conforme a configuração. Com MQTT
// desabilitado, retorna um publicador inerte sem conexão.
func NewPublisher(cfg config.MQTTConfig) (*Publisher, error) {
	if !cfg.Enabled {
		logger.Info("Publicador MQTT desabilitado por configuração")
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Infof("Conectado ao broker MQTT: %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warnf("Conexão MQTT perdida: %v", err)
	})

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("erro ao conectar ao broker MQTT: %w", token.Error())
	}

	return &Publisher{
		client:  client,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		enabled: true,
	}, nil
}

// PublishSamples publica as amostras de um tick de um dispositivo, uma
// mensagem por tag. Falha de publicação é registrada e não propaga: o ciclo
// de coleta nunca para por causa do broker.
func (p *Publisher) PublishSamples(device models.Device, samples []models.Sample) {
	if !p.enabled {
		return
	}

	for i, sample := range samples {
		if i >= len(device.Tags) {
			break
		}
		tag := device.Tags[i].Label

		payload, err := json.Marshal(samplePayload{
			Device:    device.Name,
			Tag:       tag,
			Value:     sample.Value,
			Timestamp: sample.Timestamp.UnixNano() / int64(time.Millisecond),
		})
		if err != nil {
			logger.Errorf("Erro ao serializar amostra MQTT de %s/%s: %v", device.Name, tag, err)
			continue
		}

		topic := fmt.Sprintf("%s/%s/%s", p.prefix, device.Name, tag)
		token := p.client.Publish(topic, p.qos, false, payload)
		if token.WaitTimeout(time.Second) && token.Error() != nil {
			logger.Errorf("Erro ao publicar em %s: %v", topic, token.Error())
		}
	}
}

// Close encerra a conexão com o broker
func (p *Publisher) Close() {
	if !p.enabled || p.client == nil {
		return
	}
	p.client.Disconnect(250)
	logger.Info("Publicador MQTT desconectado")
}
