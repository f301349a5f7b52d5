// Package logging wires the subsystem loggers of every library package to
// one btclog backend that writes to the console and a rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/bitfsorg/libtrade-go/interpreter"
	"github.com/bitfsorg/libtrade-go/network"
	"github.com/bitfsorg/libtrade-go/store"
	"github.com/bitfsorg/libtrade-go/trade"
	"github.com/bitfsorg/libtrade-go/txbuilder"
	"github.com/bitfsorg/libtrade-go/wallet"
)

// logWriter sends output to the console and, once InitLogRotator has been
// called, to the log rotator.
type logWriter struct {
	mu      sync.Mutex
	console io.Writer
	rotator *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.console != nil {
		_, _ = w.console.Write(p)
	}
	if w.rotator != nil {
		_, _ = w.rotator.Write(p)
	}
	return len(p), nil
}

var (
	writer = &logWriter{console: os.Stdout}

	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(writer)

	mainLog = backendLog.Logger("MAIN")
	intrLog = backendLog.Logger("INTR")
	txbdLog = backendLog.Logger("TXBD")
	trdeLog = backendLog.Logger("TRDE")
	wlltLog = backendLog.Logger("WLLT")
	netwLog = backendLog.Logger("NETW")
	storLog = backendLog.Logger("STOR")
)

// Initialize package-global logger variables.
func init() {
	interpreter.UseLogger(intrLog)
	txbuilder.UseLogger(txbdLog)
	trade.UseLogger(trdeLog)
	wallet.UseLogger(wlltLog)
	network.UseLogger(netwLog)
	store.UseLogger(storLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"MAIN": mainLog,
	"INTR": intrLog,
	"TXBD": txbdLog,
	"TRDE": trdeLog,
	"WLLT": wlltLog,
	"NETW": netwLog,
	"STOR": storLog,
}

// Main returns the logger of the executable.
func Main() btclog.Logger { return mainLog }

// SetConsole redirects console output; nil silences it.
func SetConsole(w io.Writer) {
	writer.mu.Lock()
	writer.console = w
	writer.mu.Unlock()
}

// InitLogRotator starts writing logs to logFile, rolling it every 10 MiB
// and keeping three old files.
func InitLogRotator(logFile string) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return fmt.Errorf("logging: create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("logging: create file rotator: %w", err)
	}
	writer.mu.Lock()
	old := writer.rotator
	writer.rotator = r
	writer.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Close stops writing to the log file.
func Close() error {
	writer.mu.Lock()
	r := writer.rotator
	writer.rotator = nil
	writer.mu.Unlock()
	if r == nil {
		return nil
	}
	return r.Close()
}

// SupportedSubsystems returns the sorted subsystem identifiers.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for id := range subsystemLoggers {
		subsystems = append(subsystems, id)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevel sets the level of one subsystem. Unknown subsystems are
// ignored.
func SetLogLevel(subsystemID, level string) error {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return nil
	}
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("logging: invalid level %q", level)
	}
	logger.SetLevel(lvl)
	return nil
}

// SetLogLevels sets every subsystem to level.
func SetLogLevels(level string) error {
	for id := range subsystemLoggers {
		if err := SetLogLevel(id, level); err != nil {
			return err
		}
	}
	return nil
}
