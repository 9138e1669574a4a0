// Package kb queries the vector knowledge base holding indexed job
// postings. The backing store auto-pauses when idle and reports
// "resuming after being auto-paused" while warming up, so retrieval
// retries with a growing wait before giving up.
package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout    = 30 * time.Second
	maxAttempts       = 3
	defaultRetryDelay = 5 * time.Second

	resumingMarker = "resuming after being auto-paused"
)

// Result is one retrieved candidate: the indexed text chunk, the source
// document URI, and the vector similarity score when the store reports one.
type Result struct {
	Text      string
	SourceURI string
	Score     float64
	Scored    bool
}

// Client talks to the knowledge base retrieval endpoint.
type Client struct {
	baseURL    string
	kbID       string
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, kbID string, retryDelay time.Duration, logger *slog.Logger) *Client {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		kbID:       kbID,
		retryDelay: retryDelay,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type retrieveRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Query           string `json:"query"`
	MaxResults      int    `json:"max_results"`
}

type retrieveResponse struct {
	Results []struct {
		Content struct {
			Text string `json:"text"`
		} `json:"content"`
		Location struct {
			S3Location struct {
				URI string `json:"uri"`
			} `json:"s3_location"`
		} `json:"location"`
		Score *float64 `json:"score"`
	} `json:"results"`
}

// Retrieve runs a similarity search and returns up to maxResults
// candidates. Transient auto-pause errors are retried with a wait of
// retryDelay*(attempt+1); other errors retry after a flat delay.
func (c *Client) Retrieve(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body, err := json.Marshal(retrieveRequest{
		KnowledgeBaseID: c.kbID,
		Query:           query,
		MaxResults:      maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling retrieve request: %w", err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		results, err := c.doRetrieve(ctx, body)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}

		wait := c.retryDelay
		if isResuming(err) {
			wait = c.retryDelay * time.Duration(attempt+1)
			c.logger.Debug("knowledge base resuming after auto-pause, waiting before retry",
				"attempt", attempt+1, "wait", wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("retrieving after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doRetrieve(ctx context.Context, body []byte) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		res := Result{
			Text:      r.Content.Text,
			SourceURI: r.Location.S3Location.URI,
		}
		if r.Score != nil {
			res.Score = *r.Score
			res.Scored = true
		}
		results = append(results, res)
	}
	return results, nil
}

func isResuming(err error) bool {
	return err != nil && strings.Contains(err.Error(), resumingMarker)
}

// RelevancePercent converts retrieval scores into a 0-100 relevance value:
// the average score scaled to a percentage, 50 when results carry no
// scores, and 0 for an empty set.
func RelevancePercent(results []Result) int {
	if len(results) == 0 {
		return 0
	}

	var sum float64
	var n int
	for _, r := range results {
		if r.Scored {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 50
	}
	return int(sum / float64(n) * 100)
}
