package utils

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sony/gobreaker"
)

// CloudinaryClient uploads and deletes binary assets on Cloudinary. All
// outbound calls go through a circuit breaker so a degraded media store does
// not pile up requests.
type CloudinaryClient struct {
	HTTPClient   *http.Client
	Breaker      *gobreaker.CircuitBreaker
	BaseURL      string
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
}

func NewCloudinaryClient(httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *CloudinaryClient {
	preset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	if preset == "" {
		preset = "project-store"
	}

	return &CloudinaryClient{
		HTTPClient:   httpClient,
		Breaker:      breaker,
		BaseURL:      "https://api.cloudinary.com/v1_1",
		CloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		APISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		UploadPreset: preset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the file as an unsigned multipart upload and returns the
// hosted URL.
func (c *CloudinaryClient) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read upload file: %v", err)
	}
	if err := writer.WriteField("upload_preset", c.UploadPreset); err != nil {
		return "", fmt.Errorf("failed to build upload body: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload body: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s/auto/upload", c.BaseURL, c.CloudName)

	result, err := c.Breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
		}

		var uploaded uploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
			return nil, fmt.Errorf("failed to decode upload response: %v", err)
		}
		return uploaded, nil
	})
	if err != nil {
		return "", err
	}

	uploaded := result.(uploadResponse)
	if uploaded.SecureURL != "" {
		return uploaded.SecureURL, nil
	}
	return uploaded.URL, nil
}

// Delete removes a previously uploaded asset by its hosted URL. The default
// avatar is shared between users and must never be destroyed.
func (c *CloudinaryClient) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" || fileURL == models.DefaultAvatar {
		return nil
	}

	publicID := c.publicIDFromURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not derive public id from %s", fileURL)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.APISecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(payload)))

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.APIKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.BaseURL, c.CloudName)

	_, err := c.Breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var destroyed struct {
			Result string `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&destroyed); err != nil {
			return nil, fmt.Errorf("failed to decode destroy response: %v", err)
		}
		if destroyed.Result != "ok" {
			return nil, fmt.Errorf("destroy returned %q", destroyed.Result)
		}
		return nil, nil
	})
	return err
}

// DeleteQuietly is the best-effort variant used on cleanup paths where a
// dangling asset is acceptable.
func (c *CloudinaryClient) DeleteQuietly(ctx context.Context, fileURL string) {
	if err := c.Delete(ctx, fileURL); err != nil {
		logging.Logger.Warnf("Event ID: MEDIA_DELETE_FAILED, Description: Failed to delete asset %s: %v", fileURL, err)
	}
}

// publicIDFromURL derives the Cloudinary public id from a hosted URL: the
// path from the upload-preset folder onward, without the file extension.
func (c *CloudinaryClient) publicIDFromURL(fileURL string) string {
	parts := strings.Split(fileURL, "/")
	idx := -1
	for i, part := range parts {
		if part == c.UploadPreset {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ""
	}

	publicID := strings.Join(parts[idx:], "/")
	if dot := strings.LastIndex(publicID, "."); dot != -1 {
		publicID = publicID[:dot]
	}
	return publicID
}
