// Package client talks to the blog JSON API using the bearer token scheme.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/vuln-blog/internal/models"
)

const (
	csrfHeader     = "X-CSRF-Token"
	csrfCookieName = "_csrf"
)

// Client is safe for concurrent use once configured.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token when set.
	Token string
	// RawQuery appends the search term to the URL without encoding it.
	RawQuery bool
}

// New returns a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.post(ctx, "/api/auth/register", map[string]string{"email": username, "password": password}, nil)
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/auth/login", map[string]string{"email": username, "password": password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login succeeded but no token returned")
	}
	return out.Token, nil
}

// Me returns the authenticated principal.
func (c *Client) Me(ctx context.Context) (models.Principal, error) {
	var out struct {
		User models.Principal `json:"user"`
	}
	err := c.get(ctx, "/api/me", &out)
	return out.User, err
}

// ListPosts returns all posts, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := c.get(ctx, "/api/posts", &posts)
	return posts, err
}

// SearchPosts returns posts whose title contains q.
func (c *Client) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	path := "/api/posts/search?q="
	if c.RawQuery {
		path += q
	} else {
		path += url.QueryEscape(q)
	}
	var posts []models.Post
	err := c.get(ctx, path, &posts)
	return posts, err
}

// GetPost returns a post and its comments.
func (c *Client) GetPost(ctx context.Context, id int) (models.PostDetail, error) {
	var out models.PostDetail
	err := c.get(ctx, "/api/posts/"+strconv.Itoa(id), &out)
	return out, err
}

// CreatePost stores a post and returns its id.
func (c *Client) CreatePost(ctx context.Context, title, content string) (int, error) {
	var out struct {
		ID int `json:"id"`
	}
	err := c.post(ctx, "/api/posts", map[string]string{"title": title, "content": content}, &out)
	return out.ID, err
}

// AddComment stores a comment on post postID and returns its id.
func (c *Client) AddComment(ctx context.Context, postID int, content string) (int, error) {
	var out struct {
		ID int `json:"id"`
	}
	err := c.post(ctx, "/api/posts/"+strconv.Itoa(postID)+"/comments", map[string]string{"content": content}, &out)
	return out.ID, err
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// post sends payload as JSON. When the API offers /api/csrf a fresh token
// is fetched first and sent with its secret cookie.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	token, secret, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(csrfHeader, token)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: secret})
	}
	return c.do(req, out)
}

// csrf returns the token and secret cookie value, or empty strings when the
// API does not require CSRF tokens.
func (c *Client) csrf(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/csrf", nil)
	if err != nil {
		return "", "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", "", nil
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", "", apiError(resp.StatusCode, body)
	}

	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("decode csrf token: %w", err)
	}
	secret := ""
	for _, ck := range resp.Cookies() {
		if ck.Name == csrfCookieName {
			secret = ck.Value
		}
	}
	return out.CSRFToken, secret, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiError(resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return &APIError{Status: status, Message: strings.TrimSpace(msg)}
}
