// Package githubstore implements the remote content store on the GitHub
// contents API. Each document is one file in a repository; the version
// token is the blob SHA the API hands back.
package githubstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mvdberg/klusplan/internal/domain"
)

// Ensure Store implements domain.ContentStore.
var _ domain.ContentStore = (*Store)(nil)

const defaultBaseURL = "https://api.github.com"

// Options configures the store.
// Fields are ordered to minimize memory padding.
type Options struct {
	Owner   string
	Repo    string
	Token   string // fine-grained token with contents read/write
	BaseURL string // defaults to the public API
	Client  *http.Client
}

// Store talks to one repository's contents endpoint.
type Store struct {
	client  *http.Client
	owner   string
	repo    string
	token   string
	baseURL string
}

// New creates a GitHub-backed content store.
func New(opts Options) *Store {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Store{
		client:  client,
		owner:   opts.Owner,
		repo:    opts.Repo,
		token:   opts.Token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// apiError carries the HTTP status for classification.
type apiError struct {
	Message string
	Status  int
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("github: status %d", e.Status)
}

func (s *Store) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.baseURL, s.owner, s.repo, path)
}

func (s *Store) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return nil, apiErr
	}
	return data, nil
}

// contentResponse is the GET contents payload. The API base64-encodes the
// file body with embedded newlines.
type contentResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Read fetches a document. A 404 maps to domain.ErrNotFound.
func (s *Store) Read(ctx context.Context, path string) (domain.Document, error) {
	data, err := s.do(ctx, http.MethodGet, s.contentsURL(path), nil)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok && apiErr.Status == http.StatusNotFound {
			return domain.Document{}, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return domain.Document{}, err
	}
	var payload contentResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Document{}, fmt.Errorf("decode contents response: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode %s content: %w", path, err)
	}
	return domain.Document{Content: raw, Version: payload.SHA}, nil
}

// Write replaces a document. A 409 or 422 means the version token went
// stale and maps to domain.ErrConflict so the sync engine can refetch and
// retry.
func (s *Store) Write(ctx context.Context, path, message string, content []byte, version string) (string, error) {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if version != "" {
		body["sha"] = version
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	data, err := s.do(ctx, http.MethodPut, s.contentsURL(path), encoded)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok &&
			(apiErr.Status == http.StatusConflict || apiErr.Status == http.StatusUnprocessableEntity) {
			return "", fmt.Errorf("%s: %w", path, domain.ErrConflict)
		}
		return "", err
	}
	var payload struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode write response: %w", err)
	}
	return payload.Content.SHA, nil
}

// Validate probes the repository's contents root without side effects.
func (s *Store) Validate(ctx context.Context) error {
	if _, err := s.do(ctx, http.MethodGet, s.contentsURL(""), nil); err != nil {
		return err
	}
	return nil
}
