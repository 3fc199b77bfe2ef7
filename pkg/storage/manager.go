package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"studysnatcher/pkg/errors"
	"studysnatcher/pkg/logger"
)

// Manager writes downloaded documents into one course directory,
// resolving name collisions and restoring server-reported timestamps.
// Documents are processed sequentially, so the collision check is
// performed once per save and not re-checked.
type Manager struct {
	fs        afero.Fs
	outputDir string
	chunkSize int
	logger    logger.Logger
}

// NewManager creates a storage manager rooted at outputDir, creating
// the directory if needed
func NewManager(fs afero.Fs, outputDir string, chunkSize int, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if chunkSize <= 0 {
		chunkSize = 8192
	}

	if err := fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("failed to create output directory: %v", err),
		}
	}

	return &Manager{
		fs:        fs,
		outputDir: outputDir,
		chunkSize: chunkSize,
		logger:    log,
	}, nil
}

// OutputDir returns the directory files are written into
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Exists reports whether a file with the given name is already present
func (m *Manager) Exists(filename string) bool {
	ok, err := afero.Exists(m.fs, filepath.Join(m.outputDir, filename))
	return err == nil && ok
}

// Save streams r into the output directory under filename, picking a
// " (1)", " (2)", ... variant when the name is taken. The content is
// written to a temporary file first and renamed into place. When
// modTime is non-zero, the file's modification and access times are set
// to it; a failure there is logged and the save still succeeds.
func (m *Manager) Save(r io.Reader, filename string, modTime time.Time) (string, error) {
	target := m.resolveCollision(filename)

	tempFile := target + ".tmp"
	out, err := m.fs.Create(tempFile)
	if err != nil {
		return "", &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("failed to create temporary file: %v", err),
		}
	}

	buf := make([]byte, m.chunkSize)
	_, err = io.CopyBuffer(out, r, buf)
	closeErr := out.Close()

	if err != nil {
		m.fs.Remove(tempFile)
		return "", &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("failed to stream file content: %v", err),
		}
	}
	if closeErr != nil {
		m.fs.Remove(tempFile)
		return "", &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("failed to close file: %v", closeErr),
		}
	}

	if err := m.fs.Rename(tempFile, target); err != nil {
		m.fs.Remove(tempFile)
		return "", &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("failed to rename temporary file: %v", err),
		}
	}

	if !modTime.IsZero() {
		if err := m.fs.Chtimes(target, modTime, modTime); err != nil {
			m.logger.WarnWithFields("failed to restore file timestamp", map[string]interface{}{
				"path":  target,
				"error": err.Error(),
			})
		}
	}

	m.logger.InfoWithFields("file saved", map[string]interface{}{
		"path": target,
	})

	return target, nil
}

// resolveCollision returns the first unused path for filename within
// the output directory
func (m *Manager) resolveCollision(filename string) string {
	target := filepath.Join(m.outputDir, filename)
	if !m.pathTaken(target) {
		return target
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(m.outputDir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !m.pathTaken(candidate) {
			return candidate
		}
	}
}

func (m *Manager) pathTaken(path string) bool {
	ok, err := afero.Exists(m.fs, path)
	return err == nil && ok
}
