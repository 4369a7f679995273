package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// fileField is the form field carrying the file content, it must come last
const fileField = "file"

// maxErrorBody bounds how much of a rejection body ends up in an error
const maxErrorBody = 512

// credentialResponse is the body returned by the credential endpoint
type credentialResponse struct {
	PreSignedURL string            `json:"preSignedUrl"`
	Fields       domain.FormFields `json:"fields"`
}

// Client uploads files straight to object storage using scoped credentials
type Client struct {
	httpClient    *http.Client
	publicBaseURL string
	recorder      port.KeyRecorder
	logger        *slog.Logger
}

var _ port.Uploader = (*Client)(nil)

// NewClient creates a Client. recorder may be nil.
func NewClient(httpClient *http.Client, publicBaseURL string, recorder port.KeyRecorder, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:    httpClient,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		recorder:      recorder,
		logger:        logger,
	}
}

// Upload requests a credential from credentialEndpoint, posts file to storage
// with it and returns the public URL of the stored object. Nothing is retried:
// one request goes to the issuer, at most one to storage.
func (c *Client) Upload(ctx context.Context, role domain.AssetRole, filename string, file io.Reader, credentialEndpoint string) (*domain.UploadResult, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file: %w", domain.ErrInvalidInputData, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file %s", domain.ErrInvalidInputData, filename)
	}

	cred, err := c.requestCredential(ctx, credentialEndpoint)
	if err != nil {
		return nil, err
	}
	key, _ := cred.Fields.Get("key")

	if err := c.postToStorage(ctx, cred, filename, content); err != nil {
		return nil, err
	}

	result := &domain.UploadResult{
		Role: role,
		Key:  key,
		URL:  c.publicBaseURL + "/" + key,
	}

	c.logger.Info("asset uploaded", "role", role, "key", key, "bytes", len(content))

	if c.recorder != nil {
		if recErr := c.recorder.Record(ctx, role, key); recErr != nil {
			c.logger.Warn("failed to record storage key", "role", role, "key", key, "error", recErr)
		}
	}
	return result, nil
}

func (c *Client) requestCredential(ctx context.Context, endpoint string) (*credentialResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCredentialRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCredentialRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCredentialRequestFailed, resp.StatusCode, readExcerpt(resp.Body))
	}

	var cred credentialResponse
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, fmt.Errorf("%w: malformed credential: %w", domain.ErrCredentialRequestFailed, err)
	}
	if cred.PreSignedURL == "" {
		return nil, fmt.Errorf("%w: credential has no upload url", domain.ErrCredentialRequestFailed)
	}
	if key, ok := cred.Fields.Get("key"); !ok || key == "" {
		return nil, fmt.Errorf("%w: credential has no key field", domain.ErrCredentialRequestFailed)
	}
	return &cred, nil
}

func (c *Client) postToStorage(ctx context.Context, cred *credentialResponse, filename string, content []byte) error {
	body, contentType, err := buildForm(cred.Fields, filename, content)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.PreSignedURL, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrStorageUploadFailed, resp.StatusCode, readExcerpt(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// buildForm writes every credential field in order, then the file
func buildForm(fields domain.FormFields, filename string, content []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, field := range fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field.Name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
	header.Set("Content-Type", http.DetectContentType(content))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

func readExcerpt(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}
