package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pairpulse/internal/model"
)

// DecodeErrorLog appends decode failures to a JSONL file.
type DecodeErrorLog struct {
	path string
	mu   sync.Mutex
}

func NewDecodeErrorLog(path string) *DecodeErrorLog {
	return &DecodeErrorLog{path: path}
}

// Append writes one decode error as a JSON line.
func (s *DecodeErrorLog) Append(record model.DecodeError) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := jsonCodec.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal decode error: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write decode error: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	return writer.Flush()
}
