package render

import (
	"sort"
	"sync"
	"time"

	"fc6a_go/internal/models"
)

// palette é a paleta fixa de cores por dispositivo. Com mais dispositivos do
// que cores, a paleta é reutilizada ciclicamente.
var palette = []string{
	"#1f77b4", // azul
	"#ff7f0e", // laranja
	"#2ca02c", // verde
	"#d62728", // vermelho
	"#9467bd", // roxo
}

// Broadcaster entrega um conjunto de painéis aos dashboards conectados
type Broadcaster interface {
	BroadcastPanels(panels []models.PanelFrame)
}

// Renderer reconstrói os painéis de tendência a cada tick: um painel por
// rótulo de tag, em ordem lexicográfica, sobrepondo uma linha por dispositivo.
// É sempre um redesenho completo, nunca incremental; a cadência é de 1 Hz e o
// número de painéis é pequeno.
type Renderer struct {
	hub         Broadcaster
	deviceOrder []string
	colors      map[string]string

	mu         sync.RWMutex
	lastPanels []models.PanelFrame
}

// New cria um Renderer com atribuição de cores estável, escolhida uma única
// vez na inicialização, em ordem de registro dos dispositivos
func New(hub Broadcaster, devices []models.Device) *Renderer {
	r := &Renderer{
		hub:    hub,
		colors: make(map[string]string, len(devices)),
	}
	for i, d := range devices {
		r.deviceOrder = append(r.deviceOrder, d.Name)
		r.colors[d.Name] = palette[i%len(palette)]
	}
	return r
}

// Color retorna a cor atribuída a um dispositivo
func (r *Renderer) Color(device string) string {
	return r.colors[device]
}

// Render reconstrói todos os painéis a partir do snapshot e os transmite.
// Cada sobreposição alinha seu eixo X à cauda do buffer global de
// timestamps: uma série mais curta usa os len(série) instantes mais
// recentes, nunca desalinhando séries antigas contra instantes novos.
func (r *Renderer) Render(snapshot map[string]map[string][]models.Sample, timestamps []time.Time) []models.PanelFrame {
	tags := make([]string, 0, len(snapshot))
	for tag := range snapshot {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	panels := make([]models.PanelFrame, 0, len(tags))
	for _, tag := range tags {
		panel := models.PanelFrame{Tag: tag}

		for _, dev := range r.deviceOrder {
			series := snapshot[tag][dev]
			if len(series) == 0 {
				// Série sem nenhuma amostra ainda: pulada sem erro
				continue
			}
			panel.Series = append(panel.Series, r.buildSeries(dev, series, timestamps))
		}

		panels = append(panels, panel)
	}

	r.mu.Lock()
	r.lastPanels = panels
	r.mu.Unlock()

	if r.hub != nil {
		r.hub.BroadcastPanels(panels)
	}
	return panels
}

// buildSeries monta a sobreposição de um dispositivo, com o eixo X alinhado
// à cauda do buffer global
func (r *Renderer) buildSeries(device string, series []models.Sample, timestamps []time.Time) models.SeriesFrame {
	n := len(series)
	if n > len(timestamps) {
		// Nunca deve ocorrer (invariante do Store), mas não desalinha
		series = series[n-len(timestamps):]
		n = len(series)
	}
	tail := timestamps[len(timestamps)-n:]

	frame := models.SeriesFrame{
		Device:     device,
		Color:      r.colors[device],
		Timestamps: make([]int64, n),
		Values:     make([]*float64, n),
	}
	for i := 0; i < n; i++ {
		frame.Timestamps[i] = tail[i].UnixNano() / int64(time.Millisecond)
		frame.Values[i] = series[i].Value
	}
	return frame
}

// LastPanels retorna os painéis do último tick renderizado
func (r *Renderer) LastPanels() []models.PanelFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastPanels
}
