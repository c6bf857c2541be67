package handlers

import "time"

// CreateShortLinkRequest is the request body for creating a short link.
type CreateShortLinkRequest struct {
	Body struct {
		URL       string `doc:"Destination URL (absolute, http or https)"              example:"https://example.com/very/long/path" json:"url,omitempty"`
		Validity  int    `default:"30"                                                 doc:"Validity window in minutes"             json:"validity,omitempty" minimum:"0"`
		Shortcode string `doc:"Custom shortcode (alphanumeric, 4-64 chars, optional)"  example:"abcd1"                              json:"shortcode,omitempty"`
	}
}

// CreateShortLinkResponse is the response for a successfully created short link.
type CreateShortLinkResponse struct {
	Body struct {
		ShortLink string `doc:"The full short link"               example:"http://localhost:8080/abcd1" json:"shortLink"`
		Expiry    string `doc:"Expiry timestamp, ISO-8601 UTC"    example:"2026-01-02T15:04:05Z"        json:"expiry"`
	}
}

// StatsRequest is the request for retrieving short link statistics.
type StatsRequest struct {
	Shortcode string `doc:"The shortcode" example:"abcd1" path:"shortcode"`
}

// ClickData is one recorded visit in a statistics response.
type ClickData struct {
	Timestamp string `doc:"Visit timestamp, ISO-8601 UTC" json:"timestamp"`
	Referrer  string `doc:"Referrer header, if any"       json:"referrer"`
	Location  string `doc:"Coarse location"               json:"location"`
	IP        string `doc:"Client IP"                     json:"ip"`
	UserAgent string `doc:"Client user agent"             json:"user_agent"`
}

// StatsResponse is the response for short link statistics.
type StatsResponse struct {
	Body struct {
		Clicks      int         `doc:"Number of recorded clicks"          json:"clicks"`
		OriginalURL string      `doc:"Destination URL"                    json:"originalURL"`
		CreatedAt   string      `doc:"Creation timestamp, ISO-8601 UTC"   json:"createdAt"`
		Expiry      string      `doc:"Expiry timestamp, ISO-8601 UTC"     json:"expiry"`
		ClickData   []ClickData `doc:"Click history, oldest first"        json:"clickData"`
	}
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	Shortcode string `doc:"The shortcode" example:"abcd1" path:"shortcode"`
}

// RedirectResponse redirects the visitor to the destination URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"Destination URL" header:"Location"`
	}
}

// formatTimestamp renders a timestamp as ISO-8601 UTC with a "Z" suffix.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
