package scraper

import (
	"context"
	"net/http"

	"studysnatcher/pkg/filter"
	"studysnatcher/pkg/studydrive"
)

// Client is the gateway surface the pipeline needs. The concrete
// implementation lives in the studydrive package; tests substitute a
// mock.
type Client interface {
	// Login authenticates and installs the session's bearer token
	Login(ctx context.Context, email, password string) error

	// ListDocuments returns the course's filtered documents in feed order
	ListDocuments(ctx context.Context, courseID int, spec filter.Spec) ([]studydrive.Document, error)

	// ResolveDownloadURL obtains the signed file URL for a document,
	// falling back once from the converted to the original format
	ResolveDownloadURL(ctx context.Context, documentID int, converted bool) (string, error)

	// Download streams a resolved file URL; the caller closes the body
	Download(ctx context.Context, url string) (*http.Response, error)
}

var _ Client = (*studydrive.Client)(nil)
