package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gatherly/internal/domain"
)

// maxAuthRetries bounds automatic replays of a request that keeps coming
// back 401, so a misbehaving server can't put us in a refresh loop.
const maxAuthRetries = 2

// Client provides typed access to the Gatherly API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	session *Session
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New constructs a Client for the API at base and wires the session's
// refresh call to it.
func New(base string, session *Session, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return nil, fmt.Errorf("api base url must be http(s): %q", base)
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(trimmed, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	session.SetRefreshFunc(c.refreshTokens)
	return c, nil
}

// Session exposes the token lifecycle to the auth service and the CLI.
func (c *Client) Session() *Session { return c.session }

// ListQuery builds the pagination query parameters every list endpoint
// accepts.
func ListQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out, true)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out, true)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, in, out, true)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, true)
}

// PostPublic issues an unauthenticated POST: no bearer token, no 401 retry.
// Login, register, and refresh go through here.
func (c *Client) PostPublic(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out, false)
}

// Upload posts a multipart form with the photo file and caption field.
func (c *Client) Upload(ctx context.Context, path string, up domain.PhotoUpload, out any) error {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	if up.Caption != "" {
		if err := mw.WriteField("caption", up.Caption); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("photo", up.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, up.Body); err != nil {
		return fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, body.Bytes(), mw.FormDataContentType(), out, true)
}

// WebSocketURL converts the API base into the ws(s) endpoint at path.
func (c *Client) WebSocketURL(path string) string {
	u := c.baseURL + path
	if strings.HasPrefix(u, "https://") {
		return "wss://" + strings.TrimPrefix(u, "https://")
	}
	return "ws://" + strings.TrimPrefix(u, "http://")
}

// refreshTokens is the transport half of the token refresh; Session drives
// it through its single-flight group.
func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	var tokens domain.AuthTokens
	in := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	if err := c.PostPublic(ctx, "/v1/auth/refresh", in, &tokens); err != nil {
		return domain.AuthTokens{}, err
	}
	return tokens, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any, authed bool) error {
	var payload []byte
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = b
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, payload, contentType, out, authed)
}

// do performs one logical API call. The body is kept as bytes so the request
// can be replayed after a token refresh.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, out any, authed bool) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	// One idempotency key per logical call: replays after a refresh reuse it
	// so the server can dedupe.
	idemKey := ""
	if method == http.MethodPost && authed {
		idemKey = uuid.NewString()
	}

	for attempt := 0; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if idemKey != "" {
			req.Header.Set("Idempotency-Key", idemKey)
		}
		if authed {
			token, err := c.session.Token(ctx)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusUnauthorized && authed && attempt < maxAuthRetries {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Debug().Str("method", method).Str("path", path).Int("attempt", attempt+1).
				Msg("got 401, refreshing and retrying")

			stale := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			if _, err := c.session.Refresh(ctx, stale); err != nil {
				return err
			}
			continue
		}

		return drainJSON(resp, out)
	}
}

// drainJSON consumes resp, mapping non-2xx to *APIError and decoding a 2xx
// body into out when requested.
func drainJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return errorFromResponse(resp.StatusCode, resp.Body)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
