// Package recognition wraps the external face-recognition service. The
// service exposes two multipart endpoints: one producing face embeddings
// for reference images and one matching lecture photos against a set of
// known embeddings.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/logger"
)

// Image is an in-memory image handed to the recognition service.
type Image struct {
	Name    string
	Content []byte
}

// EmbeddingsResponse is the payload of the generate-embeddings endpoint.
type EmbeddingsResponse struct {
	Embeddings []models.Embedding `json:"embeddings"`
}

// VerifyResult describes one processed lecture image: where the annotated
// copy was stored and which student roll numbers were matched in it.
type VerifyResult struct {
	FileName   string   `json:"fileName"`
	FileSize   int64    `json:"fileSize"`
	Key        string   `json:"key"`
	URL        string   `json:"url"`
	MatchedIDs []string `json:"matchedIds"`
}

// VerifyResponse is the payload of the verify-attendance endpoint.
type VerifyResponse struct {
	Results []VerifyResult `json:"results"`
}

// Client talks to the recognition service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a recognition client for the given base URL. Each call
// is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// GenerateEmbeddings sends reference photos of a single student and returns
// one embedding per image in which a face was found.
func (c *Client) GenerateEmbeddings(ctx context.Context, images []Image) (*EmbeddingsResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, img := range images {
		part, err := writer.CreateFormFile("files", img.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var resp EmbeddingsResponse
	if err := c.post(ctx, "/generate-embeddings", writer.FormDataContentType(), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyAttendance sends lecture photos together with the enrolled students'
// embeddings and returns, per photo, the annotated image location and the
// roll numbers recognised in it.
func (c *Client) VerifyAttendance(ctx context.Context, images []Image, studentEmbeddings map[string][]models.Embedding, subjectID, lectureID int64) (*VerifyResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, img := range images {
		part, err := writer.CreateFormFile("images", img.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}

	embeddingsJSON, err := json.Marshal(studentEmbeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal student embeddings: %w", err)
	}
	if err := writer.WriteField("studentEmbeddings", string(embeddingsJSON)); err != nil {
		return nil, fmt.Errorf("failed to write embeddings field: %w", err)
	}
	if err := writer.WriteField("subjectId", strconv.FormatInt(subjectID, 10)); err != nil {
		return nil, fmt.Errorf("failed to write subjectId field: %w", err)
	}
	if err := writer.WriteField("lectureId", strconv.FormatInt(lectureID, 10)); err != nil {
		return nil, fmt.Errorf("failed to write lectureId field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var resp VerifyResponse
	if err := c.post(ctx, "/verify-attendance", writer.FormDataContentType(), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Recognition service request failed")
		return apperrors.NewExternalServiceError(fmt.Sprintf("recognition service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error().Int("status", resp.StatusCode).Str("path", path).Str("body", string(respBody)).Msg("Recognition service returned an error")
		return apperrors.NewExternalServiceError(fmt.Sprintf("recognition service returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalServiceError(fmt.Sprintf("failed to decode recognition response: %v", err))
	}
	return nil
}
