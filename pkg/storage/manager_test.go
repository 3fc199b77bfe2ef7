package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studysnatcher/pkg/logger"
)

func newTestManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "Applied statistics", 8192, logger.NewTestLogger())
	require.NoError(t, err)
	return m, fs
}

func TestSave(t *testing.T) {
	m, fs := newTestManager(t)

	path, err := m.Save(strings.NewReader("file content"), "Notes - WS22 Prof Huber.pdf", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Applied statistics/Notes - WS22 Prof Huber.pdf", path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "file content", string(content))

	// No stray temp file left behind
	tempExists, _ := afero.Exists(fs, path+".tmp")
	assert.False(t, tempExists)
}

func TestSaveResolvesCollisions(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Save(strings.NewReader("one"), "report.pdf", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Applied statistics/report.pdf", first)

	second, err := m.Save(strings.NewReader("two"), "report.pdf", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Applied statistics/report (1).pdf", second)

	third, err := m.Save(strings.NewReader("three"), "report.pdf", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Applied statistics/report (2).pdf", third)
}

func TestSaveRestoresTimestamp(t *testing.T) {
	m, fs := newTestManager(t)

	uploaded := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	path, err := m.Save(strings.NewReader("content"), "Notes.pdf", uploaded)
	require.NoError(t, err)

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(uploaded))
}

func TestSaveReportsReaderFailure(t *testing.T) {
	m, fs := newTestManager(t)

	_, err := m.Save(failingReader{}, "broken.pdf", time.Time{})
	require.Error(t, err)

	// The failed write must not leave a partial file behind
	exists, _ := afero.Exists(fs, "Applied statistics/broken.pdf")
	assert.False(t, exists)
	tempExists, _ := afero.Exists(fs, "Applied statistics/broken.pdf.tmp")
	assert.False(t, tempExists)
}

func TestExists(t *testing.T) {
	m, _ := newTestManager(t)

	assert.False(t, m.Exists("Notes.pdf"))
	_, err := m.Save(strings.NewReader("content"), "Notes.pdf", time.Time{})
	require.NoError(t, err)
	assert.True(t, m.Exists("Notes.pdf"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}
