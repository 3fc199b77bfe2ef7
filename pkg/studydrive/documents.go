package studydrive

import (
	"context"
	"net/url"
	"strconv"

	"studysnatcher/pkg/filter"
)

// ListDocuments walks the course's paginated document feed and returns
// every document that carries the required fields and satisfies the
// filter, in feed order. Each page request sends the wall-clock time as
// reference_time, so the reference drifts forward across pages exactly
// like the mobile client's own paging does. Page fetches go through the
// rate-limited GET and may block on a 429.
func (c *Client) ListDocuments(ctx context.Context, courseID int, spec filter.Spec) ([]Document, error) {
	var documents []Document
	feedURL := FeedURL(c.baseURL, courseID)

	for page := 0; ; page++ {
		query := url.Values{
			"page":           {strconv.Itoa(page)},
			"reference_time": {c.now().Format(TimeFormat)},
		}

		var fp feedPage
		if err := c.GetJSON(ctx, feedURL, query, &fp); err != nil {
			return nil, err
		}

		kept := 0
		for _, record := range fp.Files {
			doc, ok := documentFromRecord(record)
			if !ok {
				continue
			}
			if !spec.Matches(record) {
				continue
			}
			documents = append(documents, doc)
			kept++
		}

		c.logger.DebugWithFields("fetched feed page", map[string]interface{}{
			"course_id": courseID,
			"page":      page,
			"files":     len(fp.Files),
			"kept":      kept,
		})

		// The feed reports the last page number; a missing value
		// degenerates to the current page and stops pagination.
		lastPage := page
		if fp.LastPage != nil {
			lastPage = *fp.LastPage
		}
		if lastPage <= page {
			break
		}
	}

	c.logger.InfoWithFields("course feed listed", map[string]interface{}{
		"course_id": courseID,
		"documents": len(documents),
	})

	return documents, nil
}
