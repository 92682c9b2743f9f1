package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fc6a_go/internal/models"
	"fc6a_go/pkg/logger"
	"fc6a_go/pkg/utils"
)

// Logger mantém um arquivo CSV diário por dispositivo, criado na primeira
// escrita do dia, com cabeçalho {timestamp, uma coluna por tag} e apenas
// appends. É um colaborador irmão do Store: recebe as mesmas amostras a
// cada tick, mas persiste em disco em vez de memória.
type Logger struct {
	dir   string
	files map[string]*deviceFile
}

type deviceFile struct {
	day    string
	file   *os.File
	writer *csv.Writer
}

// New cria um Logger gravando no diretório dado
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de CSV: %w", err)
	}
	return &Logger{
		dir:   dir,
		files: make(map[string]*deviceFile),
	}, nil
}

// Append registra as amostras de um tick para um dispositivo. Amostra nula
// vira célula vazia, mantendo as colunas alinhadas com o cabeçalho.
func (l *Logger) Append(ts time.Time, device models.Device, samples []models.Sample) error {
	df, err := l.fileFor(device, ts)
	if err != nil {
		return err
	}

	record := make([]string, 0, len(samples)+1)
	record = append(record, utils.FormatDateTime(ts))
	for _, s := range samples {
		if s.Value == nil {
			record = append(record, "")
			continue
		}
		record = append(record, utils.FormatFloat(*s.Value, 2))
	}

	if err := df.writer.Write(record); err != nil {
		return fmt.Errorf("erro ao escrever CSV de %s: %w", device.Name, err)
	}
	df.writer.Flush()
	return df.writer.Error()
}

// fileFor retorna o arquivo do dia corrente para o dispositivo, abrindo (e
// escrevendo o cabeçalho) quando necessário
func (l *Logger) fileFor(device models.Device, ts time.Time) (*deviceFile, error) {
	day := utils.DayKey(ts)

	df, ok := l.files[device.Name]
	if ok && df.day == day {
		return df, nil
	}

	// Virada de dia ou primeira escrita: fechar o anterior e abrir o novo
	if ok {
		df.writer.Flush()
		df.file.Close()
	}

	path := filepath.Join(l.dir, fmt.Sprintf("%s_%s.csv", device.Name, day))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir CSV de %s: %w", device.Name, err)
	}

	df = &deviceFile{
		day:    day,
		file:   file,
		writer: csv.NewWriter(file),
	}

	info, err := file.Stat()
	if err == nil && info.Size() == 0 {
		header := make([]string, 0, len(device.Tags)+1)
		header = append(header, "timestamp")
		for _, tag := range device.Tags {
			header = append(header, tag.Label)
		}
		if err := df.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("erro ao escrever cabeçalho CSV de %s: %w", device.Name, err)
		}
		df.writer.Flush()
		logger.Infof("Log CSV criado: %s", path)
	}

	l.files[device.Name] = df
	return df, nil
}

// Close fecha todos os arquivos abertos
func (l *Logger) Close() {
	for _, df := range l.files {
		df.writer.Flush()
		df.file.Close()
	}
	l.files = make(map[string]*deviceFile)
}
