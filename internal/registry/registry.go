package registry

import (
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
	"fc6a_go/pkg/logger"
)

// MaxActiveDevices limita quantos dispositivos são efetivamente monitorados.
// Dispositivos além do limite são truncados em ordem de configuração.
const MaxActiveDevices = 5

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z0-9_]{1,20}$`)
	registerRe = regexp.MustCompile(`^([DM])(\d{1,4})$`)
)

// ConfigError indica um registro de dispositivo/tag malformado.
// É reportado uma única vez no carregamento e aborta apenas o dispositivo afetado.
type ConfigError struct {
	Device string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuração inválida no dispositivo %q, campo %s: %s", e.Device, e.Field, e.Reason)
}

// Registry mantém o conjunto estático de dispositivos monitorados.
// Imutável após Load.
type Registry struct {
	devices []models.Device
}

// Load valida os registros brutos de configuração e monta o registro de
// dispositivos. Dispositivos inválidos são descartados individualmente (com
// log do ConfigError); retorna erro apenas se nenhum dispositivo válido restar.
func Load(cfgs []config.DeviceConfig) (*Registry, error) {
	seen := make(map[string]bool)
	devices := make([]models.Device, 0, len(cfgs))

	for _, dc := range cfgs {
		dev, err := buildDevice(dc, seen)
		if err != nil {
			logger.Errorf("Dispositivo descartado: %v", err)
			continue
		}
		seen[dev.Name] = true
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("nenhum dispositivo válido na configuração")
	}

	if len(devices) > MaxActiveDevices {
		ignored := make([]string, 0, len(devices)-MaxActiveDevices)
		for _, d := range devices[MaxActiveDevices:] {
			ignored = append(ignored, d.Name)
		}
		logger.Warnf("Mais de %d dispositivos configurados; ignorando: %v", MaxActiveDevices, ignored)
	}

	return &Registry{devices: devices}, nil
}

// buildDevice valida um registro bruto e o converte para o modelo tipado
func buildDevice(dc config.DeviceConfig, seen map[string]bool) (models.Device, error) {
	if !nameRe.MatchString(dc.Name) {
		return models.Device{}, &ConfigError{Device: dc.Name, Field: "name",
			Reason: "deve ter 1-20 caracteres alfanuméricos ou underscore"}
	}
	if seen[dc.Name] {
		return models.Device{}, &ConfigError{Device: dc.Name, Field: "name", Reason: "nome duplicado"}
	}

	ip := net.ParseIP(dc.Address)
	if ip == nil || ip.To4() == nil {
		return models.Device{}, &ConfigError{Device: dc.Name, Field: "address",
			Reason: fmt.Sprintf("endereço IPv4 inválido: %q", dc.Address)}
	}

	if len(dc.Tags) == 0 {
		return models.Device{}, &ConfigError{Device: dc.Name, Field: "tags", Reason: "lista de tags vazia"}
	}

	tags := make([]models.Tag, 0, len(dc.Tags))
	for _, tc := range dc.Tags {
		tag, err := buildTag(dc.Name, tc)
		if err != nil {
			return models.Device{}, err
		}
		tags = append(tags, tag)
	}

	return models.Device{
		Name:    dc.Name,
		Address: dc.Address,
		Swapped: dc.Swapped,
		Tags:    tags,
	}, nil
}

// buildTag valida e interpreta o endereço do registrador em tempo de carga,
// em vez de em tempo de leitura
func buildTag(device string, tc config.TagConfig) (models.Tag, error) {
	if tc.Label == "" {
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.label", Reason: "rótulo vazio"}
	}

	m := registerRe.FindStringSubmatch(tc.Register)
	if m == nil {
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.register",
			Reason: fmt.Sprintf("endereço %q não segue o formato [D|M]NNNN", tc.Register)}
	}
	area := m[1]
	addr, err := strconv.Atoi(m[2])
	if err != nil {
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.register", Reason: err.Error()}
	}

	var kind models.TagKind
	switch tc.Type {
	case "bit", "B", "b":
		kind = models.TagBit
	case "word", "W", "w":
		kind = models.TagWord
	case "float", "F", "f":
		kind = models.TagFloat
	default:
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.type",
			Reason: fmt.Sprintf("tipo desconhecido: %q", tc.Type)}
	}

	// Bits vivem em relés M; words e floats em registradores D
	if kind == models.TagBit && area != "M" {
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.register",
			Reason: fmt.Sprintf("tag de bit %q exige área M", tc.Register)}
	}
	if kind != models.TagBit && area != "D" {
		return models.Tag{}, &ConfigError{Device: device, Field: "tag.register",
			Reason: fmt.Sprintf("tag %s %q exige área D", kind, tc.Register)}
	}

	return models.Tag{
		Label:    tc.Label,
		Register: tc.Register,
		Area:     area,
		Addr:     addr,
		Kind:     kind,
	}, nil
}

// Devices retorna todos os dispositivos válidos, em ordem de configuração
func (r *Registry) Devices() []models.Device {
	return r.devices
}

// Active retorna os dispositivos efetivamente monitorados (primeiros 5)
func (r *Registry) Active() []models.Device {
	if len(r.devices) > MaxActiveDevices {
		return r.devices[:MaxActiveDevices]
	}
	return r.devices
}

// Find procura um dispositivo ativo pelo nome
func (r *Registry) Find(name string) (models.Device, bool) {
	for _, d := range r.Active() {
		if d.Name == name {
			return d, true
		}
	}
	return models.Device{}, false
}

// TagLabels retorna os rótulos distintos dos dispositivos ativos, em ordem
// lexicográfica (a ordem dos painéis)
func (r *Registry) TagLabels() []string {
	set := make(map[string]bool)
	for _, d := range r.Active() {
		for _, t := range d.Tags {
			set[t.Label] = true
		}
	}

	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
