package studydrive

import "time"

// TimeFormat is the timestamp format the gateway uses for upload times
// and the feed's reference_time parameter
const TimeFormat = "2006-01-02 15:04:05"

// Document is one listed course document. Attributes holds the full
// untyped feed record the document was filtered against.
type Document struct {
	ID         int
	Name       string
	Uploaded   string
	Semester   string
	Professor  string
	Attributes map[string]interface{}
}

// UploadedTime parses the server-reported upload timestamp
func (d Document) UploadedTime() (time.Time, error) {
	return time.ParseInLocation(TimeFormat, d.Uploaded, time.Local)
}

// seedResponse is the body of the seed endpoint
type seedResponse struct {
	Seed string `json:"seed"`
}

// loginResponse is the body of a successful login
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// feedPage is one page of a course's document feed. Files stay untyped
// because filtering walks arbitrary nested fields. LastPage is a pointer
// so an absent value can be told apart from page zero.
type feedPage struct {
	Files    []map[string]interface{} `json:"files"`
	LastPage *int                     `json:"last_page"`
}

// documentFromRecord builds a Document from one raw feed entry. It
// returns false when any of the five required fields is missing, which
// drops the entry from the listing.
func documentFromRecord(record map[string]interface{}) (Document, bool) {
	id, ok := intField(record, "file_id")
	if !ok {
		return Document{}, false
	}
	name, ok := stringField(record, "file_name")
	if !ok {
		return Document{}, false
	}
	uploaded, ok := stringField(record, "uploaded")
	if !ok {
		return Document{}, false
	}
	semester, ok := stringField(record, "semester")
	if !ok {
		return Document{}, false
	}
	professor, ok := stringField(record, "professor")
	if !ok {
		return Document{}, false
	}

	return Document{
		ID:         id,
		Name:       name,
		Uploaded:   uploaded,
		Semester:   semester,
		Professor:  professor,
		Attributes: record,
	}, true
}

func intField(record map[string]interface{}, key string) (int, bool) {
	switch v := record[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func stringField(record map[string]interface{}, key string) (string, bool) {
	v, ok := record[key].(string)
	return v, ok
}
