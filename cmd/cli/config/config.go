package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/crucial707/vuln-blog/internal/client"
)

const (
	defaultAPIURL = "http://localhost:3000"
	tokenFileName = ".vuln_blog_token"
)

// ErrNotLoggedIn is returned when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in: run `blog login` first")

// APIURL returns the base URL for the blog API.
// It can be overridden with the VULN_BLOG_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("VULN_BLOG_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// TokenPath is ~/.vuln_blog_token.
func TokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// SaveToken stores the JWT readable only by the current user.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

// LoadToken returns the stored JWT or ErrNotLoggedIn.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the stored JWT. It reports whether one existed.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Client returns an API client, authenticated when a token is stored.
func Client() *client.Client {
	c := client.New(APIURL())
	if token, err := LoadToken(); err == nil {
		return c.WithToken(token)
	}
	return c
}
