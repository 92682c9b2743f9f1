package store

import (
	"sync"
	"time"

	"fc6a_go/internal/models"
)

// Store mantém as janelas rolantes de amostras por (tag, dispositivo) e o
// buffer global de timestamps dos ticks. Toda série é limitada ao mesmo
// tamanho máximo e aparada pela frente, de modo que a memória não cresce
// durante execução indefinida.
//
// O loop de coleta é o único escritor; handlers HTTP/WebSocket leem
// concorrentemente, por isso o RWMutex.
type Store struct {
	mu         sync.RWMutex
	maxLen     int
	timestamps []time.Time
	series     map[string]map[string][]models.Sample // tag -> dispositivo -> amostras
}

// New cria um Store com a janela máxima dada (em amostras)
func New(maxLen int) *Store {
	return &Store{
		maxLen: maxLen,
		series: make(map[string]map[string][]models.Sample),
	}
}

// MaxLen retorna o tamanho máximo da janela
func (s *Store) MaxLen() int {
	return s.maxLen
}

// AppendTimestamp registra o instante de um tick no buffer global e o apara
// para as últimas maxLen entradas
func (s *Store) AppendTimestamp(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timestamps = append(s.timestamps, t)
	if len(s.timestamps) > s.maxLen {
		s.timestamps = s.timestamps[len(s.timestamps)-s.maxLen:]
	}
}

// Append registra uma amostra para a série (tag, dispositivo) e apara a
// série para nunca exceder o buffer global de timestamps
func (s *Store) Append(tagLabel, deviceName string, sample models.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDevice, ok := s.series[tagLabel]
	if !ok {
		byDevice = make(map[string][]models.Sample)
		s.series[tagLabel] = byDevice
	}

	seq := append(byDevice[deviceName], sample)
	if len(seq) > len(s.timestamps) {
		seq = seq[len(seq)-len(s.timestamps):]
	}
	byDevice[deviceName] = seq
}

// TrimAll apara o buffer de timestamps e todas as séries para as maxLen
// entradas mais recentes. Idempotente: aplicar duas vezes seguidas produz o
// mesmo resultado que uma.
func (s *Store) TrimAll(maxLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.timestamps) > maxLen {
		s.timestamps = s.timestamps[len(s.timestamps)-maxLen:]
	}

	for _, byDevice := range s.series {
		for dev, seq := range byDevice {
			limit := maxLen
			if len(s.timestamps) < limit {
				limit = len(s.timestamps)
			}
			if len(seq) > limit {
				byDevice[dev] = seq[len(seq)-limit:]
			}
		}
	}
}

// SnapshotFor retorna uma cópia das séries de um rótulo de tag, mapeadas por
// dispositivo. Tag sem nenhuma amostra resulta em mapa vazio, nunca erro.
func (s *Store) SnapshotFor(tagLabel string) map[string][]models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]models.Sample)
	for dev, seq := range s.series[tagLabel] {
		cp := make([]models.Sample, len(seq))
		copy(cp, seq)
		out[dev] = cp
	}
	return out
}

// Snapshot retorna uma cópia completa de todas as séries
func (s *Store) Snapshot() map[string]map[string][]models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string][]models.Sample, len(s.series))
	for tag, byDevice := range s.series {
		cp := make(map[string][]models.Sample, len(byDevice))
		for dev, seq := range byDevice {
			seqCp := make([]models.Sample, len(seq))
			copy(seqCp, seq)
			cp[dev] = seqCp
		}
		out[tag] = cp
	}
	return out
}

// Timestamps retorna uma cópia do buffer global de timestamps
func (s *Store) Timestamps() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]time.Time, len(s.timestamps))
	copy(cp, s.timestamps)
	return cp
}

// Len retorna o tamanho atual do buffer global de timestamps
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timestamps)
}
