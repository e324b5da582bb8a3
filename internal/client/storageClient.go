package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"codefriend-store/internal/config"
)

// BlobStorage is the external storage collaborator. Slip images and asset
// bytes live there; this service only ever holds opaque reference URLs.
type BlobStorage interface {
	// UploadSlip stores a payment-slip image and returns its reference URL.
	UploadSlip(ctx context.Context, orderID, filename string, slip io.Reader) (string, error)
	// AssetURL resolves a product asset key to a short-lived signed URL.
	AssetURL(ctx context.Context, assetKey string) (string, error)
}

type storageClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewStorageClient(cfg *config.Storage) BlobStorage {
	return &storageClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *storageClientImpl) UploadSlip(ctx context.Context, orderID, filename string, slip io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, slip); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	uploadURL := fmt.Sprintf("%s/v1/uploads?folder=slips&name=%s", c.baseURL, url.QueryEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("storage upload status %d", resp.StatusCode)
	}

	var res struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if res.URL == "" {
		return "", fmt.Errorf("storage upload returned empty url")
	}

	return res.URL, nil
}

func (c *storageClientImpl) AssetURL(ctx context.Context, assetKey string) (string, error) {
	signURL := fmt.Sprintf("%s/v1/sign?key=%s", c.baseURL, url.QueryEscape(assetKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signURL, nil)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storage sign status %d", resp.StatusCode)
	}

	var res struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}

	return res.URL, nil
}
