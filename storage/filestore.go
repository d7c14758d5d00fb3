// Package storage persists documents as JSON files, one file per document,
// with stable field ordering and indentation so saved files diff cleanly.
package storage

import (
	"os"
	"path/filepath"

	"github.com/modforge/core/document"
	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/sirupsen/logrus"
)

// FileStore loads and saves documents on the local filesystem. The document
// ID is the file path.
type FileStore struct {
	backupOnSave bool
	logger       *logrus.Entry
}

// NewFileStore creates a file store.
func NewFileStore() *FileStore {
	return &FileStore{logger: logging.NewLogger("file-store")}
}

// WithBackup enables keeping a .bak copy of the previous content when
// saving over an existing file.
func (f *FileStore) WithBackup(enabled bool) *FileStore {
	f.backupOnSave = enabled
	return f
}

// Load reads and decodes the document at id.
func (f *FileStore) Load(id document.ID) (jsonval.Value, error) {
	data, err := os.ReadFile(string(id))
	if err != nil {
		return nil, errors.ReadFailed(string(id), err)
	}
	value, err := jsonval.Decode(data)
	if err != nil {
		return nil, errors.ParseFailed(string(id), err)
	}
	return value, nil
}

// Save encodes the snapshot and writes it to id's path atomically: the
// content goes to a temp file in the same directory which is then renamed
// over the target, so a crashed save never truncates an entity file.
func (f *FileStore) Save(id document.ID, data jsonval.Value) error {
	encoded, err := jsonval.Encode(data)
	if err != nil {
		return errors.WriteFailed(string(id), err)
	}

	path := string(id)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WriteFailed(string(id), err)
	}

	if f.backupOnSave {
		if prev, err := os.ReadFile(path); err == nil {
			if err := os.WriteFile(path+".bak", prev, 0644); err != nil {
				f.logger.WithField("document", id).WithError(err).Warn("Failed to write backup file")
			}
		}
	}

	tmp, err := os.CreateTemp(dir, ".modforge-save-*")
	if err != nil {
		return errors.WriteFailed(string(id), err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.WriteFailed(string(id), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.WriteFailed(string(id), err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.WriteFailed(string(id), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.WriteFailed(string(id), err)
	}

	f.logger.WithField("document", id).Debug("Persisted document")
	return nil
}
