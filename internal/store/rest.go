package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
)

const restPath = "/rest/v1/"

// RESTStore talks to a Supabase / PostgREST endpoint.
type RESTStore struct {
	endpoint   string
	key        string
	pageSize   int
	httpClient *http.Client
}

// NewREST creates a REST store for cfg. Every request carries the key as the
// apikey header and as a bearer token.
func NewREST(cfg config.StoreConfig) (*RESTStore, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing store url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("store url %q is not absolute", cfg.URL)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClient(cfg.Timeout))
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Key,
		TokenType:   "Bearer",
	}))
	client.Timeout = cfg.Timeout

	return &RESTStore{
		endpoint:   base.String() + restPath + url.PathEscape(cfg.Table),
		key:        cfg.Key,
		pageSize:   pageSize,
		httpClient: client,
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Insert posts one row with Prefer: return=minimal.
func (s *RESTStore) Insert(ctx context.Context, ev model.NewEvent) error {
	ev, err := prepare(ev)
	if err != nil {
		return err
	}
	body, err := json.Marshal(model.ToRow(ev))
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store insert request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// FetchAll reads the whole table ordered by id, one Range page at a time.
// The offset advances by the rows actually returned, so a server max-rows cap
// below the page size shortens pages without truncating the history.
func (s *RESTStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "id.asc")
	endpoint := s.endpoint + "?" + q.Encode()

	var all []model.Event
	for from := 0; ; {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		s.setHeaders(req)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Prefer", "count=exact")
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", from, from+s.pageSize-1))

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("store fetch request failed: %w", err)
		}
		if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
			resp.Body.Close()
			break
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			err := decodeAPIError(resp)
			resp.Body.Close()
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		var page []model.Row
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding store response: %w", err)
		}
		for _, r := range page {
			ev, err := r.Event()
			if err != nil {
				return nil, fmt.Errorf("decoding store response: %w", err)
			}
			all = append(all, ev)
		}
		logging.Debug().Int("from", from).Int("rows", len(page)).Msg("fetched page")
		if len(page) == 0 {
			break
		}
		from += len(page)
		if total, ok := contentRangeTotal(resp.Header.Get("Content-Range")); ok && from >= total {
			break
		}
	}
	return all, nil
}

// contentRangeTotal extracts the total from a Content-Range header such as
// "0-24/1000" or "*/0". It reports false when the total is unknown ("*").
func contentRangeTotal(h string) (int, bool) {
	_, total, found := strings.Cut(h, "/")
	if !found || total == "*" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *RESTStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.key)
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
