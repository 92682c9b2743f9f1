package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level representa o nível de log
type Level int

const (
	// DEBUG nível para mensagens detalhadas de depuração
	DEBUG Level = iota
	// INFO nível para informações gerais
	INFO
	// WARN nível para avisos
	WARN
	// ERROR nível para erros
	ERROR
	// FATAL nível para erros fatais (encerra o programa)
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO ",
	WARN:  "WARN ",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var (
	mu sync.Mutex

	// Nível mínimo de log
	logLevel = INFO

	// Destinos de escrita: out para DEBUG/INFO/WARN, errOut para ERROR/FATAL
	out    io.Writer
	errOut io.Writer

	// Arquivos de log abertos por EnableFileLogging
	logFile *os.File
	errFile *os.File

	// Formato de timestamp
	timeFormat = "2006-01-02 15:04:05.000"

	// Incluir arquivo:linha de origem nas mensagens
	includeSource = true

	initialized = false
)

// Init inicializa o logger com saída para o terminal
func Init() {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return
	}

	out = os.Stdout
	errOut = os.Stderr
	initialized = true
}

// SetLevel define o nível mínimo de log
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = level
}

// GetLevel retorna o nível atual de log
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return logLevel
}

// IsDebugEnabled verifica se o nível de debug está habilitado
func IsDebugEnabled() bool {
	return GetLevel() <= DEBUG
}

// SetOutput define a saída para todos os logs
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	errOut = w
}

// SetTimeFormat define o formato de timestamp
func SetTimeFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	timeFormat = format
}

// EnableFileLogging habilita o log para arquivo além do terminal. O nome do
// arquivo leva o prefixo e o instante de início do processo.
func EnableFileLogging(logDir, prefix string) error {
	if err := enableFileLogging(logDir, prefix); err != nil {
		return err
	}
	Info("Logging iniciado")
	return nil
}

func enableFileLogging(logDir, prefix string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("erro ao criar diretório de log: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	if prefix != "" {
		prefix = prefix + "_"
	}

	lf, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("%s%s.log", prefix, timestamp)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo de log: %w", err)
	}

	ef, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("%s%s_error.log", prefix, timestamp)),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		lf.Close()
		return fmt.Errorf("erro ao criar arquivo de log de erro: %w", err)
	}

	// Fechar arquivos anteriores, se existirem
	if logFile != nil {
		logFile.Close()
	}
	if errFile != nil {
		errFile.Close()
	}

	logFile = lf
	errFile = ef

	if out == nil {
		out = os.Stdout
		errOut = os.Stderr
	}
	out = io.MultiWriter(out, lf)
	errOut = io.MultiWriter(errOut, ef)

	return nil
}

// Sync fecha os arquivos de log abertos
func Sync() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if errFile != nil {
		errFile.Close()
		errFile = nil
	}
}

// write escreve uma mensagem de log com o nível especificado
func write(level Level, format string, args ...interface{}) {
	mu.Lock()
	if level < logLevel {
		mu.Unlock()
		return
	}

	dest := out
	if level >= ERROR {
		dest = errOut
	}

	// Fonte do log (arquivo e linha)
	var source string
	if includeSource {
		_, file, line, ok := runtime.Caller(2)
		if ok {
			source = fmt.Sprintf(" [%s:%d]", filepath.Base(file), line)
		}
	}

	var msg string
	if len(args) == 0 {
		msg = format
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	line := fmt.Sprintf("[%s] %s%s: %s\n", time.Now().Format(timeFormat), levelNames[level], source, msg)

	if dest == nil {
		// Logger nunca inicializado: fallback para stderr
		fmt.Fprint(os.Stderr, line)
	} else {
		fmt.Fprint(dest, line)
	}
	mu.Unlock()

	if level == FATAL {
		panic(msg)
	}
}

// Debug escreve mensagem de log com nível DEBUG
func Debug(msg string) {
	write(DEBUG, "%s", msg)
}

// Debugf escreve mensagem de log formatada com nível DEBUG
func Debugf(format string, args ...interface{}) {
	write(DEBUG, format, args...)
}

// Info escreve mensagem de log com nível INFO
func Info(msg string) {
	write(INFO, "%s", msg)
}

// Infof escreve mensagem de log formatada com nível INFO
func Infof(format string, args ...interface{}) {
	write(INFO, format, args...)
}

// Warn escreve mensagem de log com nível WARN
func Warn(msg string) {
	write(WARN, "%s", msg)
}

// Warnf escreve mensagem de log formatada com nível WARN
func Warnf(format string, args ...interface{}) {
	write(WARN, format, args...)
}

// Error escreve mensagem de log com nível ERROR
func Error(msg string, err error) {
	if err != nil {
		write(ERROR, "%s: %v", msg, err)
	} else {
		write(ERROR, "%s", msg)
	}
}

// Errorf escreve mensagem de log formatada com nível ERROR
func Errorf(format string, args ...interface{}) {
	write(ERROR, format, args...)
}

// Fatal escreve mensagem de log com nível FATAL e encerra o programa
func Fatal(msg string, err error) {
	if err != nil {
		write(FATAL, "%s: %v", msg, err)
	} else {
		write(FATAL, "%s", msg)
	}
}

// Fatalf escreve mensagem de log formatada com nível FATAL e encerra o programa
func Fatalf(format string, args ...interface{}) {
	write(FATAL, format, args...)
}
