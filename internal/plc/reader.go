package plc

import (
	"math"
	"time"

	"fc6a_go/internal/models"
	"fc6a_go/pkg/logger"
)

// Reader executa leituras tipadas por tag, isolando falhas: uma leitura ruim
// nunca aborta o ciclo de coleta nem afeta outras tags/dispositivos do mesmo
// tick. A falha vira um Sample nulo registrado com log.
type Reader struct {
	factory Factory
}

// NewReader resolve o driver configurado. Driver ausente é erro de
// configuração e aborta o startup.
func NewReader(driverName string) (*Reader, error) {
	factory, err := Driver(driverName)
	if err != nil {
		return nil, err
	}
	return &Reader{factory: factory}, nil
}

// ReadDevice abre um contexto de conexão para o dispositivo e lê todas as
// suas tags em sequência, uma amostra por tag, todas compartilhando o
// timestamp lógico do tick. Falha de conexão gera amostras nulas para todas
// as tags do dispositivo, sem afetar os demais.
func (r *Reader) ReadDevice(ts time.Time, device models.Device) []models.Sample {
	samples := make([]models.Sample, len(device.Tags))
	for i := range samples {
		samples[i] = models.Sample{Timestamp: ts}
	}

	acc, err := r.factory(device)
	if err == nil {
		err = acc.Connect()
	}
	if err != nil {
		logger.Errorf("Dispositivo %s inacessível: %v", device.Name, err)
		return samples
	}
	defer acc.Close()

	for i, tag := range device.Tags {
		samples[i] = ReadTag(acc, ts, device, tag)
	}
	return samples
}

// ReadTag lê uma tag tipada através da capacidade externa e normaliza o
// resultado. Floats são arredondados para 2 casas decimais; bits viram 0/1
// para que todas as séries compartilhem um único tipo de valor.
func ReadTag(acc Accessor, ts time.Time, device models.Device, tag models.Tag) models.Sample {
	var (
		value float64
		err   error
	)

	switch tag.Kind {
	case models.TagFloat:
		var f float64
		f, err = acc.ReadFloat(tag.Addr, device.Swapped)
		value = math.Round(f*100) / 100
	case models.TagWord:
		var w uint16
		w, err = acc.ReadWord(tag.Addr)
		value = float64(w)
	case models.TagBit:
		var b bool
		b, err = acc.ReadBit(tag.Addr)
		if b {
			value = 1
		}
	}

	if err != nil {
		logger.Errorf("Falha ao ler %s/%s (%s): %v", device.Name, tag.Label, tag.Register, err)
		return models.Null(ts)
	}

	return models.Float(ts, value)
}
