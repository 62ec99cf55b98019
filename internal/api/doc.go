// Package api provides the HTTP client for the paginated games dataset.
//
// This package handles:
//   - One GET request per page with offset/limit query parameters
//   - Retry with exponential backoff on transient failures (429, 5xx,
//     network errors), controlled by an explicit retry [Policy]
//   - Decoding the response body into raw records
//
// Retries are transparent: callers observe only final success or final
// failure after the retry ceiling is exhausted.
//
// # Usage
//
//	client := api.NewClient(api.Options{
//	    BaseURL: "https://example.com/games",
//	    Timeout: 30 * time.Second,
//	    Retry:   api.Policy{Attempts: 5, Backoff: time.Second, MaxBackoff: 30 * time.Second},
//	})
//
//	records, err := client.FetchPage(ctx, 0, 500)
package api
