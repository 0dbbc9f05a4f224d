package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const (
	printerFile = "printer.json"
	logsFile    = "print_logs.json"

	// maxFileLogs bounds print_logs.json; older entries are dropped first.
	maxFileLogs = 500
)

// FileStore keeps the printer configuration and the print log as JSON files
// in a directory. It is used when no database is configured.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) GetPrinterConfig(ctx context.Context) (model.PrinterConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := model.DefaultPrinterConfig()
	found, err := s.readJSON(printerFile, &cfg)
	if err != nil {
		return model.PrinterConfig{}, err
	}
	if !found {
		return model.DefaultPrinterConfig(), nil
	}
	return cfg.WithDefaults(), nil
}

func (s *FileStore) SavePrinterConfig(ctx context.Context, cfg model.PrinterConfig) (model.PrinterConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cfg.WithDefaults()
	cfg.UpdatedAt = s.now().UTC()

	if err := s.writeJSON(printerFile, cfg); err != nil {
		return model.PrinterConfig{}, err
	}
	return cfg, nil
}

func (s *FileStore) AppendLog(ctx context.Context, entry model.PrintLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []model.PrintLog
	if _, err := s.readJSON(logsFile, &logs); err != nil {
		return err
	}

	logs = append(logs, entry)
	if len(logs) > maxFileLogs {
		logs = logs[len(logs)-maxFileLogs:]
	}

	return s.writeJSON(logsFile, logs)
}

func (s *FileStore) RecentLogs(ctx context.Context, limit int) ([]model.PrintLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []model.PrintLog
	if _, err := s.readJSON(logsFile, &logs); err != nil {
		return nil, err
	}

	result := make([]model.PrintLog, 0, min(limit, len(logs)))
	for i := len(logs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, logs[i])
	}
	return result, nil
}

func (s *FileStore) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return true, nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}
