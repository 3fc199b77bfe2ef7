package studydrive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"studysnatcher/pkg/errors"
)

// ResolveDownloadURL obtains the signed download URL for a document.
// The gateway answers with a redirect whose Location header is the
// actual file URL; redirects are not followed so the target can be read
// directly. When the converted format yields no Location, one retry is
// issued for the original (unconverted) format; if that fails too, the
// document is unresolvable and the caller should skip it.
func (c *Client) ResolveDownloadURL(ctx context.Context, documentID int, converted bool) (string, error) {
	downloadURL := DownloadURL(c.baseURL, documentID)
	token := DownloadToken(documentID)

	for {
		query := url.Values{
			"converted_file": {strconv.FormatBool(converted)},
			"download-token": {token},
			"preview":        {"true"},
		}

		resp, err := c.GetNoRedirect(ctx, downloadURL, query)
		if err != nil {
			return "", err
		}

		location := resp.Header.Get("Location")
		if location != "" {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return location, nil
		}

		if !converted {
			// Already asked for the original format; nothing left to
			// fall back to.
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			c.logger.ErrorWithFields("download endpoint returned no location", map[string]interface{}{
				"document_id": documentID,
				"status":      resp.StatusCode,
				"headers":     fmt.Sprintf("%v", resp.Header),
				"body":        string(body),
			})
			return "", &errors.Error{
				Type:    errors.ErrorTypeUnresolvable,
				Message: fmt.Sprintf("no download location for document %d", documentID),
				Code:    resp.StatusCode,
			}
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.logger.WarnWithFields("conversion unavailable, retrying with original format", map[string]interface{}{
			"document_id": documentID,
		})
		converted = false
	}
}
