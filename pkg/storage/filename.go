package storage

import (
	"net/url"
	"path"
	"strings"
)

// hexFixup is one literal hex sequence the upstream file server leaves
// in URL paths in place of a German diacritic.
type hexFixup struct {
	sequence    string
	replacement string
}

// The table is fixed and known to be incomplete; sequences outside it
// stay unresolved in the filename.
var hexFixups = []hexFixup{
	{"C3B6", "ö"},
	{"C396", "Ö"},
	{"C3A4", "ä"},
	{"C384", "Ä"},
	{"C3BC", "ü"},
	{"C39C", "Ü"},
	{"CC88", "ä"},
}

// FilenameFromURL derives a filename from the URL's path component,
// undoing the upstream server's legacy hex escapes and plus-encoded
// spaces.
func FilenameFromURL(rawURL string) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		name = parsed.Path
	}
	name = path.Base(name)
	name = strings.ReplaceAll(name, "+", " ")
	for _, fixup := range hexFixups {
		name = strings.ReplaceAll(name, fixup.sequence, fixup.replacement)
	}
	return name
}

// BuildFilename produces the final on-disk filename for a document.
// The display name wins when it carries an extension; otherwise the
// name comes from the resolved URL. Semester and professor suffixes,
// when non-blank, slot in before the extension.
func BuildFilename(displayName, semester, professor, resolvedURL string) string {
	var name string
	if path.Ext(displayName) != "" {
		name = displayName
	} else {
		name = FilenameFromURL(resolvedURL)
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if strings.TrimSpace(semester) != "" {
		stem += " - " + strings.ReplaceAll(semester, "/", "-")
	}
	if strings.TrimSpace(professor) != "" {
		stem += " Prof " + professor
	}

	return stem + ext
}
