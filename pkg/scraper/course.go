package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"studysnatcher/pkg/errors"
)

var (
	courseURLPattern = regexp.MustCompile(`/course/([^/]+)/(\d+)`)
	illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*\n\t]`)
)

// Course identifies one Studydrive course extracted from its page URL
type Course struct {
	Name string
	ID   int
}

// ParseCourseURL extracts the course name and numeric id from a course
// page URL. The name comes from the URL slug with dashes turned into
// spaces and only the first letter capitalized. A URL that does not
// match the course pattern fails the whole run.
func ParseCourseURL(rawURL string) (Course, error) {
	match := courseURLPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return Course{}, &errors.Error{
			Type:    errors.ErrorTypeCourseURL,
			Message: fmt.Sprintf("no course information found in link %s", rawURL),
		}
	}

	id, err := strconv.Atoi(match[2])
	if err != nil {
		return Course{}, &errors.Error{
			Type:    errors.ErrorTypeCourseURL,
			Message: fmt.Sprintf("invalid course id in link %s", rawURL),
		}
	}

	return Course{
		Name: capitalize(strings.ReplaceAll(match[1], "-", " ")),
		ID:   id,
	}, nil
}

// FolderName returns the course name with characters illegal in
// filesystem paths stripped
func (c Course) FolderName() string {
	return illegalPathChars.ReplaceAllString(c.Name, "")
}

// capitalize upper-cases the first rune and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
