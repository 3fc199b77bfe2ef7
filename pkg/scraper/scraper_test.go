package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studysnatcher/pkg/config"
	"studysnatcher/pkg/errors"
	"studysnatcher/pkg/filter"
	"studysnatcher/pkg/logger"
	"studysnatcher/pkg/studydrive"
)

// mockClient scripts the gateway surface for pipeline tests
type mockClient struct {
	loginErr     error
	loginCalls   int
	documents    []studydrive.Document
	listErr      error
	listedSpec   filter.Spec
	resolveURLs  map[int]string
	resolveErrs  map[int]error
	downloadBody map[string]string
	downloadErrs map[string]error
}

func (m *mockClient) Login(ctx context.Context, email, password string) error {
	m.loginCalls++
	return m.loginErr
}

func (m *mockClient) ListDocuments(ctx context.Context, courseID int, spec filter.Spec) ([]studydrive.Document, error) {
	m.listedSpec = spec
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.documents, nil
}

func (m *mockClient) ResolveDownloadURL(ctx context.Context, documentID int, converted bool) (string, error) {
	if err, ok := m.resolveErrs[documentID]; ok {
		return "", err
	}
	url, ok := m.resolveURLs[documentID]
	if !ok {
		return "", fmt.Errorf("unexpected resolve for document %d", documentID)
	}
	return url, nil
}

func (m *mockClient) Download(ctx context.Context, url string) (*http.Response, error) {
	if err, ok := m.downloadErrs[url]; ok {
		return nil, err
	}
	body, ok := m.downloadBody[url]
	if !ok {
		return nil, fmt.Errorf("unexpected download of %s", url)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func testDocument(id int, name string) studydrive.Document {
	return studydrive.Document{
		ID:        id,
		Name:      name,
		Uploaded:  "2023-01-01 00:00:00",
		Semester:  "WS22",
		Professor: "Huber",
	}
}

func newTestScraper(client Client, fs afero.Fs) *Scraper {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = "."
	return NewWithClient(client, fs, cfg, logger.NewTestLogger())
}

func TestRunDownloadsCourse(t *testing.T) {
	client := &mockClient{
		documents:    []studydrive.Document{testDocument(10, "Notes.pdf")},
		resolveURLs:  map[int]string{10: "https://cdn.example.org/notes_10.pdf"},
		downloadBody: map[string]string{"https://cdn.example.org/notes_10.pdf": "pdf bytes"},
	}
	fs := afero.NewMemMapFs()

	s := newTestScraper(client, fs)
	summary, err := s.Run(context.Background(),
		"user@example.org", "hunter2",
		"https://x/course/applied-statistics/4821",
		true, nil)
	require.NoError(t, err)

	assert.Equal(t, Course{Name: "Applied statistics", ID: 4821}, summary.Course)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, client.loginCalls)

	path := "Applied statistics/Notes - WS22 Prof Huber.pdf"
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)))
}

func TestRunRejectsBadCourseURLBeforeLogin(t *testing.T) {
	client := &mockClient{}
	s := newTestScraper(client, afero.NewMemMapFs())

	_, err := s.Run(context.Background(), "user@example.org", "hunter2",
		"https://x/not-a-course", true, nil)
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeCourseURL, apiErr.Type)
	assert.Equal(t, 0, client.loginCalls, "no network call before URL validation")
}

func TestRunAbortsOnAuthFailure(t *testing.T) {
	client := &mockClient{
		loginErr: &errors.Error{Type: errors.ErrorTypeAuth, Message: "rejected", Code: 401},
	}
	s := newTestScraper(client, afero.NewMemMapFs())

	_, err := s.Run(context.Background(), "user@example.org", "wrong",
		"https://x/course/applied-statistics/4821", true, nil)
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
}

func TestRunIsolatesPerDocumentFailures(t *testing.T) {
	client := &mockClient{
		documents: []studydrive.Document{
			testDocument(1, "First.pdf"),
			testDocument(2, "Broken.pdf"),
			testDocument(3, "Third.pdf"),
		},
		resolveURLs: map[int]string{
			1: "https://cdn.example.org/first.pdf",
			3: "https://cdn.example.org/third.pdf",
		},
		resolveErrs: map[int]error{
			2: &errors.Error{Type: errors.ErrorTypeUnresolvable, Message: "no location"},
		},
		downloadBody: map[string]string{
			"https://cdn.example.org/first.pdf": "one",
			"https://cdn.example.org/third.pdf": "three",
		},
	}
	fs := afero.NewMemMapFs()

	s := newTestScraper(client, fs)
	summary, err := s.Run(context.Background(), "user@example.org", "hunter2",
		"https://x/course/applied-statistics/4821", true, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.Skipped)

	// The failing document is recorded, the others still land on disk
	require.Len(t, summary.Results, 3)
	assert.Error(t, summary.Results[1].Err)

	for _, name := range []string{
		"Applied statistics/First - WS22 Prof Huber.pdf",
		"Applied statistics/Third - WS22 Prof Huber.pdf",
	} {
		exists, _ := afero.Exists(fs, name)
		assert.True(t, exists, name)
	}
}

func TestRunPassesFilterSpecThrough(t *testing.T) {
	client := &mockClient{}
	s := newTestScraper(client, afero.NewMemMapFs())

	spec := filter.Spec{"semester": "WS22"}
	_, err := s.Run(context.Background(), "user@example.org", "hunter2",
		"https://x/course/applied-statistics/4821", true, spec)
	require.NoError(t, err)

	assert.Equal(t, spec, client.listedSpec)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	client := &mockClient{
		documents:    []studydrive.Document{testDocument(1, "First.pdf")},
		resolveURLs:  map[int]string{1: "https://cdn.example.org/first.pdf"},
		downloadBody: map[string]string{"https://cdn.example.org/first.pdf": "one"},
	}
	s := newTestScraper(client, afero.NewMemMapFs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, "user@example.org", "hunter2",
		"https://x/course/applied-statistics/4821", true, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchDocumentLogsUnparseableTimestamp(t *testing.T) {
	doc := testDocument(10, "Notes.pdf")
	doc.Uploaded = "yesterday"

	client := &mockClient{
		documents:    []studydrive.Document{doc},
		resolveURLs:  map[int]string{10: "https://cdn.example.org/notes.pdf"},
		downloadBody: map[string]string{"https://cdn.example.org/notes.pdf": "pdf bytes"},
	}
	fs := afero.NewMemMapFs()

	s := newTestScraper(client, fs)
	summary, err := s.Run(context.Background(), "user@example.org", "hunter2",
		"https://x/course/applied-statistics/4821", true, nil)
	require.NoError(t, err)

	// The file is still saved, only the mtime restore is lost
	assert.Equal(t, 1, summary.Saved)
	exists, _ := afero.Exists(fs, "Applied statistics/Notes - WS22 Prof Huber.pdf")
	assert.True(t, exists)
}
