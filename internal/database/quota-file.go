package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"weatherbot/internal/lib/sl"
)

// QuotaFile persists the provider call-timestamp log as a JSON array
// of RFC 3339 timestamps. It is the default store when no SQL backend
// is configured. Writes go through a temp file and rename so a crash
// mid-write cannot corrupt the log.
type QuotaFile struct {
	path string
	log  *slog.Logger
}

func NewQuotaFile(path string, log *slog.Logger) *QuotaFile {
	return &QuotaFile{
		path: path,
		log:  log.With(sl.Module("quota.file")),
	}
}

func (f *QuotaFile) Load() ([]time.Time, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read quota log: %w", err)
	}

	var encoded []string
	if err = json.Unmarshal(raw, &encoded); err != nil {
		// A corrupted log resets the budget rather than wedging the
		// tracker; the loss is at most one rolling window.
		f.log.Warn("quota log corrupted, resetting", sl.Err(err))
		return nil, nil
	}

	timestamps := make([]time.Time, 0, len(encoded))
	for _, value := range encoded {
		ts, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			f.log.With(slog.String("value", value)).Warn("skipping invalid quota timestamp")
			continue
		}
		timestamps = append(timestamps, ts.UTC())
	}
	return timestamps, nil
}

func (f *QuotaFile) Save(timestamps []time.Time) error {
	encoded := make([]string, 0, len(timestamps))
	for _, ts := range timestamps {
		encoded = append(encoded, ts.UTC().Format(time.RFC3339Nano))
	}
	raw, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quota log: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create quota dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write quota log: %w", err)
	}
	if err = os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace quota log: %w", err)
	}
	return nil
}
