package uploader

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.cloudinary.com"

// Cloudinary posts files to the cloudinary upload REST endpoint using a
// signed request.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string

	// BaseURL is overridable for tests.
	BaseURL string
	Client  *http.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) *Cloudinary {
	return &Cloudinary{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Folder:    folder,
		BaseURL:   defaultBaseURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *Cloudinary) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	publicID := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := u.sign(publicID, timestamp)

	body, contentType, err := buildForm(file, filepath.Base(localPath), map[string]string{
		"api_key":   u.APIKey,
		"folder":    u.Folder,
		"public_id": publicID,
		"timestamp": timestamp,
		"signature": signature,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", u.BaseURL, u.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upload failed: status %d: %s", resp.StatusCode, b)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return "", fmt.Errorf("upload response missing url")
}

// sign hashes the signed params in alphabetical order plus the secret, per
// the cloudinary API contract.
func (u *Cloudinary) sign(publicID, timestamp string) string {
	toSign := fmt.Sprintf("folder=%s&public_id=%s&timestamp=%s%s", u.Folder, publicID, timestamp, u.APISecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}

func buildForm(file io.Reader, filename string, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write form field: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy file into form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
