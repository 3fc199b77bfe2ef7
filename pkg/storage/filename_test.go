package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "plain path",
			url:      "https://cdn.example.org/files/Notes.pdf",
			expected: "Notes.pdf",
		},
		{
			name:     "plus-encoded spaces",
			url:      "https://cdn.example.org/files/Exam+Solutions+2021.pdf",
			expected: "Exam Solutions 2021.pdf",
		},
		{
			name:     "legacy hex umlaut",
			url:      "https://cdn.example.org/files/PrC3BCfung.pdf",
			expected: "Prüfung.pdf",
		},
		{
			name:     "multiple fixups",
			url:      "https://cdn.example.org/files/C396konomie+C3BCbersicht.pdf",
			expected: "Ökonomie übersicht.pdf",
		},
		{
			name:     "unknown sequences stay untouched",
			url:      "https://cdn.example.org/files/NoteE282AC.pdf",
			expected: "NoteE282AC.pdf",
		},
		{
			name:     "query string ignored",
			url:      "https://cdn.example.org/files/Notes.pdf?token=abc&expires=123",
			expected: "Notes.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilenameFromURL(tt.url))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		semester    string
		professor   string
		url         string
		expected    string
	}{
		{
			name:        "display name with suffixes",
			displayName: "Notes.pdf",
			semester:    "WS22",
			professor:   "Huber",
			url:         "https://cdn.example.org/files/ignored.pdf",
			expected:    "Notes - WS22 Prof Huber.pdf",
		},
		{
			name:        "display name without extension falls back to url",
			displayName: "Notes",
			semester:    "",
			professor:   "",
			url:         "https://cdn.example.org/files/document_10.pdf",
			expected:    "document_10.pdf",
		},
		{
			name:        "semester slash becomes dash",
			displayName: "Exam.pdf",
			semester:    "WS22/23",
			professor:   "",
			url:         "",
			expected:    "Exam - WS22-23.pdf",
		},
		{
			name:        "blank suffixes omitted",
			displayName: "Exam.pdf",
			semester:    "  ",
			professor:   "",
			url:         "",
			expected:    "Exam.pdf",
		},
		{
			name:        "professor only",
			displayName: "Slides.pptx",
			semester:    "",
			professor:   "Meier",
			url:         "",
			expected:    "Slides Prof Meier.pptx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildFilename(tt.displayName, tt.semester, tt.professor, tt.url))
		})
	}
}
