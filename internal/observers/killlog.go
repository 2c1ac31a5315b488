package observers

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// DefaultKillLogFile is used by OpenKillLog when no path is given.
const DefaultKillLogFile = "logs_of_battle.txt"

// KillLine formats a successful fight:
//
//	Toad kermit killed Dragon smaug at (50, 50)
//
// The position is the defender's at the time of death.
func KillLine(attacker, defender *models.Entity) string {
	p := defender.Position()
	return fmt.Sprintf("%s %s killed %s %s at (%d, %d)",
		attacker.Kind(), attacker.Name(), defender.Kind(), defender.Name(), p.X, p.Y)
}

// KillLog writes one line per kill. Failed attempts are not written.
type KillLog struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	logger log.Log
}

func NewKillLog(w io.Writer, logger log.Log) *KillLog {
	if logger == nil {
		logger = log.Nop()
	}
	return &KillLog{w: w, logger: logger}
}

// OpenKillLog appends to the file at path, creating it when missing.
func OpenKillLog(path string, logger log.Log) (*KillLog, error) {
	if path == "" {
		path = DefaultKillLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open kill log: %w", err)
	}
	l := NewKillLog(f, logger)
	l.closer = f
	return l, nil
}

func (l *KillLog) OnFight(attacker, defender *models.Entity, success bool) {
	if !success {
		return
	}
	line := KillLine(attacker, defender) + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.w, line); err != nil {
		l.logger.Error("Failed to write kill line", log.Error(err))
	}
}

// Close closes the underlying file when the log owns one.
func (l *KillLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
