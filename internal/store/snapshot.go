package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Snapshot persists named collections as whole-file JSON documents under a
// single data directory. Reads and writes never surface errors to callers:
// a failed load leaves the destination at its zero value, a failed save keeps
// the in-memory state authoritative. Both are logged.
type Snapshot struct {
	dir string
	log *zap.Logger
}

func NewSnapshot(dir string, log *zap.Logger) *Snapshot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Snapshot{dir: dir, log: log}
}

func (s *Snapshot) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the last saved snapshot of a collection into dst.
// dst is left untouched when the backing file is absent or unreadable.
func (s *Snapshot) Load(name string, dst any) {
	b, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("snapshot load failed", zap.String("collection", name), zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.log.Warn("snapshot decode failed", zap.String("collection", name), zap.Error(err))
	}
}

// Save overwrites the collection's backing file with the full document.
// The write goes through a temp file and a rename so a partial write is
// never visible to a subsequent Load.
func (s *Snapshot) Save(name string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Warn("snapshot encode failed", zap.String("collection", name), zap.Error(err))
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warn("snapshot dir create failed", zap.String("collection", name), zap.Error(err))
		return
	}
	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		s.log.Warn("snapshot save failed", zap.String("collection", name), zap.Error(err))
		return
	}
	_, werr := tmp.Write(b)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("snapshot save failed", zap.String("collection", name),
			zap.NamedError("write", werr), zap.NamedError("close", cerr))
		return
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("snapshot save failed", zap.String("collection", name), zap.Error(err))
	}
}
