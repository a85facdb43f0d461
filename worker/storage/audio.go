package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"newsVoice/worker/pipeline"
)

// AudioStore writes finished audio artifacts under a base directory.
// Save stages the bytes in a temp file and renames it into place, so a
// reader streaming the previous artifact never sees a partial write.
type AudioStore struct {
	dir string
}

var _ pipeline.AudioStore = (*AudioStore)(nil)

func NewAudioStore(dir string) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio storage dir: %w", err)
	}
	return &AudioStore{dir: dir}, nil
}

func (s *AudioStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	final := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	return final, nil
}
