// Package client talks to the document API over HTTP. *Client satisfies
// editor.API.
package client

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

	"github.com/google/uuid"

	"resumesync/internal/resume"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a client for the API rooted at baseURL. A zero timeout selects
// DefaultTimeout; a nil logger selects slog.Default.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreateDocument creates an empty document.
func (c *Client) CreateDocument(ctx context.Context, req resume.CreateDocumentRequest) (resume.Document, error) {
	var doc resume.Document
	if err := c.do(ctx, http.MethodPost, "/v1/documents", req, &doc); err != nil {
		return resume.Document{}, err
	}
	return doc, nil
}

// GetDocument loads a document with every saved section.
func (c *Client) GetDocument(ctx context.Context, documentID int) (resume.Document, error) {
	var doc resume.Document
	if err := c.do(ctx, http.MethodGet, documentPath(documentID), nil, &doc); err != nil {
		return resume.Document{}, err
	}
	return doc, nil
}

// UpdateHeader sends every header field and returns the stored header.
func (c *Client) UpdateHeader(ctx context.Context, documentID int, header resume.Header) (resume.Header, error) {
	var out resume.Header
	if err := c.do(ctx, http.MethodPatch, documentPath(documentID), header, &out); err != nil {
		return resume.Header{}, err
	}
	return out, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, documentID int) error {
	return c.do(ctx, http.MethodDelete, documentPath(documentID), nil, nil)
}

func (c *Client) SaveContact(ctx context.Context, documentID int, s resume.ContactSection) (resume.ContactSection, error) {
	return putSection(ctx, c, documentID, resume.SectionContact, s)
}

func (c *Client) SaveProfile(ctx context.Context, documentID int, s resume.ProfileSection) (resume.ProfileSection, error) {
	return putSection(ctx, c, documentID, resume.SectionProfile, s)
}

func (c *Client) SaveSkills(ctx context.Context, documentID int, s resume.SkillsSection) (resume.SkillsSection, error) {
	return putSection(ctx, c, documentID, resume.SectionSkills, s)
}

func (c *Client) SaveExperience(ctx context.Context, documentID int, s resume.ExperienceSection) (resume.ExperienceSection, error) {
	return putSection(ctx, c, documentID, resume.SectionExperience, s)
}

func (c *Client) SaveProjects(ctx context.Context, documentID int, s resume.ProjectsSection) (resume.ProjectsSection, error) {
	return putSection(ctx, c, documentID, resume.SectionProjects, s)
}

func (c *Client) SaveEducation(ctx context.Context, documentID int, s resume.EducationSection) (resume.EducationSection, error) {
	return putSection(ctx, c, documentID, resume.SectionEducation, s)
}

func (c *Client) SaveLanguages(ctx context.Context, documentID int, s resume.LanguagesSection) (resume.LanguagesSection, error) {
	return putSection(ctx, c, documentID, resume.SectionLanguages, s)
}

func putSection[S any](ctx context.Context, c *Client, documentID int, kind resume.SectionKey, section S) (S, error) {
	var out S
	if err := c.do(ctx, http.MethodPut, documentPath(documentID)+"/"+string(kind), section, &out); err != nil {
		var zero S
		return zero, fmt.Errorf("save %s: %w", kind, err)
	}
	return out, nil
}

func documentPath(id int) string {
	return fmt.Sprintf("/v1/documents/%d", id)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	correlationID := uuid.NewString()
	req.Header.Set("X-Correlation-ID", correlationID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("correlation_id", correlationID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(data))
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &HTTPError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
