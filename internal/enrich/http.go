package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSource queries a licensing verification service that answers
// GET {base}/search with a JSON list of listings.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// NewHTTPSource returns a source rooted at baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type searchResponse struct {
	ResultCount int       `json:"result_count"`
	Results     []Listing `json:"results"`
}

// Search runs one query. A non-200 response is an error; an empty result set
// is not.
func (s *HTTPSource) Search(ctx context.Context, q Query) ([]Listing, error) {
	params := url.Values{}
	if q.Profession != "" {
		params.Set("profession", q.Profession)
	}
	if q.ByLicense() {
		params.Set("license_no", q.LicenseNumber)
	} else {
		params.Set("first_name", q.FirstName)
		params.Set("last_name", q.LastName)
	}
	u := s.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying licensing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("licensing service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing licensing response: %w", err)
	}
	return sr.Results, nil
}
