package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/logging"
)

const (
	restPathPrefix   = "/rest/v1"
	tableMessages    = "messages"
	tableProfiles    = "profiles"
	mimeJSON         = "application/json"
	mimeSingleObject = "application/vnd.pgrst.object+json"
	messageOrder     = "is_pinned.desc,timestamp.desc"
)

// RESTBackend implements Backend against a PostgREST endpoint.
type RESTBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logging.Logger
}

type RESTOption func(*RESTBackend)

func WithHTTPClient(c *http.Client) RESTOption {
	return func(b *RESTBackend) { b.httpClient = c }
}

func WithRESTLogger(l logging.Logger) RESTOption {
	return func(b *RESTBackend) { b.log = l }
}

// NewRESTBackend validates the project URL and api key and returns a
// backend rooted at <projectURL>/rest/v1. Configuration problems are
// reported as common.ErrRemoteUnavailable.
func NewRESTBackend(projectURL, apiKey string, opts ...RESTOption) (*RESTBackend, error) {
	b := &RESTBackend{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logging.Discard(),
	}
	for _, o := range opts {
		o(b)
	}

	u, err := url.Parse(strings.TrimSpace(projectURL))
	if err != nil || projectURL == "" || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid project url %q: %w", projectURL, common.ErrRemoteUnavailable)
	}
	base := strings.TrimRight(u.String(), "/")
	if !strings.HasSuffix(base, restPathPrefix) {
		base += restPathPrefix
	}
	b.baseURL = base

	info, err := InspectAPIKey(apiKey, time.Now())
	if err != nil {
		return nil, err
	}
	if info.Role == RoleServiceRole {
		b.log.Warn(context.Background(), "api key carries the service_role claim; use the anon key in clients")
	}

	return b, nil
}

type request struct {
	method string
	table  string
	query  url.Values
	header http.Header
	body   any
}

func (b *RESTBackend) do(ctx context.Context, r request, out any) error {
	target := b.baseURL + "/" + r.table
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", r.table, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set(common.APIKeyHeaderName, b.apiKey)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Accept", mimeJSON)
	if r.body != nil {
		req.Header.Set("Content-Type", mimeJSON)
	}
	for k, vs := range r.header {
		req.Header[k] = vs
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", r.table, common.ErrDecode, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

func actorHeader(actorID string) http.Header {
	h := http.Header{}
	h.Set(common.DeviceIDHeaderName, actorID)
	return h
}

func (b *RESTBackend) ListMessages(ctx context.Context) ([]MessageRow, error) {
	var rows []MessageRow
	err := b.do(ctx, request{
		method: http.MethodGet,
		table:  tableMessages,
		query:  url.Values{"select": {"*"}, "order": {messageOrder}},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *RESTBackend) InsertMessages(ctx context.Context, rows []MessageRow) error {
	h := http.Header{}
	h.Set("Prefer", "return=minimal")
	return b.do(ctx, request{
		method: http.MethodPost,
		table:  tableMessages,
		header: h,
		body:   rows,
	}, nil)
}

func (b *RESTBackend) DeleteMessage(ctx context.Context, actorID, id string) error {
	return b.do(ctx, request{
		method: http.MethodDelete,
		table:  tableMessages,
		query:  byID(id),
		header: actorHeader(actorID),
	}, nil)
}

func (b *RESTBackend) SetPinned(ctx context.Context, actorID, id string, pinned bool) error {
	return b.do(ctx, request{
		method: http.MethodPatch,
		table:  tableMessages,
		query:  byID(id),
		header: actorHeader(actorID),
		body:   map[string]bool{"is_pinned": pinned},
	}, nil)
}

func (b *RESTBackend) GetProfile(ctx context.Context, deviceID string) (*ProfileRow, error) {
	q := byID(deviceID)
	q.Set("select", "*")
	h := http.Header{}
	h.Set("Accept", mimeSingleObject)

	var row ProfileRow
	err := b.do(ctx, request{method: http.MethodGet, table: tableProfiles, query: q, header: h}, &row)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeNoRows {
		return nil, fmt.Errorf("profile %s: %w", deviceID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (b *RESTBackend) UpsertProfile(ctx context.Context, row ProfileRow) error {
	h := http.Header{}
	h.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	return b.do(ctx, request{
		method: http.MethodPost,
		table:  tableProfiles,
		query:  url.Values{"on_conflict": {"id"}},
		header: h,
		body:   []ProfileRow{row},
	}, nil)
}

func (b *RESTBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}
