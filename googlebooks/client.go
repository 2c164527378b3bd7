// Package googlebooks looks up book metadata by ISBN on the Google
// Books volumes API and normalizes the first match into a preview
// record for manual confirmation before storage.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/estanteapp/estante/models"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Placeholder values used when the provider has no data for a field.
const (
	unknownTitle     = "Título Desconhecido"
	unknownAuthors   = "Autor Desconhecido"
	unknownGenre     = "Gênero Desconhecido"
	unknownPublisher = "Editora Desconhecida"
	defaultLanguage  = "pt"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Google Books volumes API response types; only the fields the preview
// needs are declared.
type volumesResponse struct {
	Items []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Categories    []string `json:"categories"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	PageCount     *int     `json:"pageCount"`
	ImageLinks    *struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
	Language string `json:"language"`
}

// LookupISBN queries the provider for an ISBN. A missing volume is not
// an error: it returns found=false and a preview with only the ISBN and
// placeholder text fields, so the caller can fall back to manual entry.
// Errors are reserved for transport or provider failures.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*models.BookPreview, bool, error) {
	searchURL := c.baseURL + "?q=" + url.QueryEscape("isbn:"+isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create volumes request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("volumes request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("volumes API returned status %d", resp.StatusCode)
	}

	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, false, fmt.Errorf("failed to decode volumes response: %w", err)
	}

	if len(data.Items) == 0 {
		return emptyPreview(isbn), false, nil
	}
	return normalizePreview(isbn, data.Items[0].VolumeInfo), true, nil
}

// normalizePreview maps a volumeInfo onto the preview record, filling
// placeholders for absent fields.
func normalizePreview(isbn string, info volumeInfo) *models.BookPreview {
	preview := &models.BookPreview{
		ISBN:     isbn,
		Title:    info.Title,
		Language: defaultLanguage,
	}
	if preview.Title == "" {
		preview.Title = unknownTitle
	}

	if len(info.Authors) > 0 {
		preview.Authors = strings.Join(info.Authors, ", ")
	} else {
		preview.Authors = unknownAuthors
	}

	genre := unknownGenre
	if len(info.Categories) > 0 {
		genre = info.Categories[0]
	}
	preview.Genre = &genre

	publisher := info.Publisher
	if publisher == "" {
		publisher = unknownPublisher
	}
	preview.Publisher = &publisher

	preview.PublicationYear = parseYear(info.PublishedDate)
	preview.PageCount = info.PageCount

	if info.ImageLinks != nil && info.ImageLinks.Thumbnail != "" {
		thumbnail := info.ImageLinks.Thumbnail
		preview.CoverURL = &thumbnail
	}

	if len(info.Language) >= 2 {
		preview.Language = info.Language[:2]
	}

	return preview
}

// emptyPreview is the manual-entry fallback for an unmatched ISBN.
func emptyPreview(isbn string) *models.BookPreview {
	return &models.BookPreview{
		ISBN:     isbn,
		Title:    unknownTitle,
		Authors:  unknownAuthors,
		Language: defaultLanguage,
	}
}

// parseYear extracts the year from a date-like string such as
// "2019-05-01". Anything whose first four characters are not digits
// yields no year.
func parseYear(publishedDate string) *int {
	if len(publishedDate) < 4 {
		return nil
	}
	year := 0
	for _, r := range publishedDate[:4] {
		if r < '0' || r > '9' {
			return nil
		}
		year = year*10 + int(r-'0')
	}
	return &year
}
