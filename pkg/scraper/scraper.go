// Package scraper orchestrates a full course download: parse the course
// URL, authenticate, list the filtered documents, and resolve and save
// each one in feed order. Per-document failures are isolated; only
// authentication and course-URL errors abort a run.
package scraper

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"studysnatcher/pkg/config"
	"studysnatcher/pkg/errors"
	"studysnatcher/pkg/filter"
	"studysnatcher/pkg/logger"
	"studysnatcher/pkg/storage"
	"studysnatcher/pkg/studydrive"
)

// Scraper runs the sequential retrieval pipeline for one course
type Scraper struct {
	client Client
	fs     afero.Fs
	config *config.Config
	logger logger.Logger
}

// Result records the outcome for one document
type Result struct {
	Document studydrive.Document
	Path     string
	Err      error
}

// Summary aggregates a whole run
type Summary struct {
	Course  Course
	Total   int
	Saved   int
	Skipped int
	Results []Result
}

// New creates a scraper backed by the real gateway client and the OS
// filesystem
func New(cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client: studydrive.NewClient(cfg, log),
		fs:     afero.NewOsFs(),
		config: cfg,
		logger: log,
	}
}

// NewWithClient creates a scraper with an injected client and filesystem
func NewWithClient(client Client, fs afero.Fs, cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client: client,
		fs:     fs,
		config: cfg,
		logger: log,
	}
}

// Run downloads every matching document of the course at courseURL.
// The course URL is validated before any network call; login happens
// before listing. Documents are processed one at a time in feed order,
// and an error on one document is recorded in the summary and does not
// stop the rest.
func (s *Scraper) Run(ctx context.Context, email, password, courseURL string, preferPDF bool, spec filter.Spec) (*Summary, error) {
	course, err := ParseCourseURL(courseURL)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("starting course download", map[string]interface{}{
		"course":    course.Name,
		"course_id": course.ID,
	})

	if err := s.client.Login(ctx, email, password); err != nil {
		return nil, err
	}

	documents, err := s.client.ListDocuments(ctx, course.ID, spec)
	if err != nil {
		return nil, err
	}

	outputDir := filepath.Join(s.config.Output.BaseDirectory, course.FolderName())
	manager, err := storage.NewManager(s.fs, outputDir, s.config.Download.ChunkSize, s.logger)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Course: course, Total: len(documents)}

	for _, doc := range documents {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		path, err := s.FetchDocument(ctx, manager, doc, preferPDF)
		if err != nil {
			if errors.IsFatalError(err) {
				return summary, err
			}
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"document_id": doc.ID,
				"name":        doc.Name,
			}).Error("document skipped")
			summary.Skipped++
			summary.Results = append(summary.Results, Result{Document: doc, Err: err})
			continue
		}

		summary.Saved++
		summary.Results = append(summary.Results, Result{Document: doc, Path: path})
	}

	s.logger.InfoWithFields("course download finished", map[string]interface{}{
		"course":  course.Name,
		"total":   summary.Total,
		"saved":   summary.Saved,
		"skipped": summary.Skipped,
	})

	return summary, nil
}

// FetchDocument resolves, downloads and materializes a single document
func (s *Scraper) FetchDocument(ctx context.Context, manager *storage.Manager, doc studydrive.Document, preferPDF bool) (string, error) {
	fileURL, err := s.client.ResolveDownloadURL(ctx, doc.ID, preferPDF)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Download(ctx, fileURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	filename := storage.BuildFilename(doc.Name, doc.Semester, doc.Professor, fileURL)

	// A bad upload timestamp only costs the mtime restore, never the file
	var modTime time.Time
	if uploaded, err := doc.UploadedTime(); err == nil {
		modTime = uploaded
	} else {
		s.logger.WarnWithFields("unparseable upload timestamp", map[string]interface{}{
			"document_id": doc.ID,
			"uploaded":    doc.Uploaded,
		})
	}

	return manager.Save(resp.Body, filename, modTime)
}
