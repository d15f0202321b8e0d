package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"InsureCost/models"

	"github.com/pkg/errors"
)

const maxResponseBytes = 4 << 20

// APIClient talks JSON to the analytics/prediction backend. Each dashboard
// tab owns one client, so the backend session cookie stays tab scoped.
type APIClient struct {
	baseURL *url.URL
	timeout time.Duration

	mu   sync.Mutex
	jar  http.CookieJar
	http *http.Client
}

// NewAPIClient creates a client for the backend at baseURL. A zero timeout
// leaves requests unbounded.
func NewAPIClient(baseURL string, timeout time.Duration) (*APIClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid backend URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL %q must be absolute", baseURL)
	}

	c := &APIClient{baseURL: u, timeout: timeout}
	if err := c.resetJar(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *APIClient) resetJar() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return errors.Wrap(err, "failed to create cookie jar")
	}
	c.mu.Lock()
	c.jar = jar
	c.http = &http.Client{Jar: jar, Timeout: c.timeout}
	c.mu.Unlock()
	return nil
}

func (c *APIClient) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.http
}

// Cookies returns the backend cookies currently held for this tab.
func (c *APIClient) Cookies() []models.StoredCookie {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.StoredCookie
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		out = append(out, models.StoredCookie{Name: cookie.Name, Value: cookie.Value})
	}
	return out
}

// RestoreCookies puts previously stored backend cookies back into the jar.
func (c *APIClient) RestoreCookies(cookies []models.StoredCookie) {
	if len(cookies) == 0 {
		return
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value, Path: "/"})
	}
	c.mu.Lock()
	c.jar.SetCookies(c.baseURL, httpCookies)
	c.mu.Unlock()
}

// ClearCookies forgets the backend session.
func (c *APIClient) ClearCookies() {
	if err := c.resetJar(); err != nil {
		log.Printf("Failed to reset backend cookies: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends one request. Transport failures and non-2xx answers come back as
// *models.NetworkError; the backend error text is kept in Message.
func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build %s", op)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &models.NetworkError{Op: op, Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", op)
	}
	return nil
}
