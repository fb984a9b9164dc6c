package model

import "time"

// ShortURL maps an original URL to its integer short code
type ShortURL struct {
	Short     int64     `json:"short"`
	Original  string    `json:"original"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortenRequest is the body of POST /api/shorturl
type ShortenRequest struct {
	URL string `json:"url"`
}

// ShortenResponse is the API response
type ShortenResponse struct {
	OriginalURL string `json:"original_url"`
	ShortURL    int64  `json:"short_url"`
}
