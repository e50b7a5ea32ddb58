package media

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
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/httputil"
)

// DefaultCloudinaryURL is the Cloudinary API base.
const DefaultCloudinaryURL = "https://api.cloudinary.com"

// CloudinaryConfig holds Cloudinary account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string // defaults to DefaultCloudinaryURL
}

// Cloudinary uploads images with Cloudinary's signed upload API.
type Cloudinary struct {
	cfg    CloudinaryConfig
	client *http.Client
	now    func() time.Time
	delay  time.Duration
}

// NewCloudinary returns a Cloudinary uploader.
func NewCloudinary(cfg CloudinaryConfig, client *http.Client) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "cloudinary cloud name, API key and API secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudinaryURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = httputil.NewClient(0)
	}
	return &Cloudinary{cfg: cfg, client: client, now: time.Now, delay: time.Second}, nil
}

// Sign computes the Cloudinary request signature: the SHA-1 hex digest of
// the parameters sorted by name and joined as k=v with '&', followed by
// the API secret. Empty values are skipped.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (c *Cloudinary) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
	params["signature"] = Sign(params, c.cfg.APISecret)
	params["api_key"] = c.cfg.APIKey
	return params
}

func (c *Cloudinary) endpoint(action string) string {
	return fmt.Sprintf("%s/v1_1/%s/image/%s", c.cfg.BaseURL, c.cfg.CloudName, action)
}

type uploadResponse struct {
	SecureURL        string `json:"secure_url"`
	PublicID         string `json:"public_id"`
	Bytes            int64  `json:"bytes"`
	Format           string `json:"format"`
	OriginalFilename string `json:"original_filename"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image to Cloudinary. The body is buffered so transient
// failures can be retried.
func (c *Cloudinary) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, apperr.Wrap(apperr.ErrCodeUpload, err, "read upload")
	}

	var out uploadResponse
	err = httputil.Retry(ctx, 3, c.delay, func() error {
		params := c.signed(map[string]string{"folder": folder})
		body, ctype, err := multipartBody(params, filename, contentType, data)
		if err != nil {
			return err
		}
		return c.post(ctx, c.endpoint("upload"), ctype, body, &out)
	})
	if err != nil {
		return Asset{}, apperr.Wrap(apperr.ErrCodeUpload, err, "upload %s to cloudinary", filename)
	}

	size := out.Bytes
	if size == 0 {
		size = int64(len(data))
	}
	return Asset{
		URL:      out.SecureURL,
		PublicID: out.PublicID,
		Filename: filename,
		MimeType: normalizeType(contentType),
		Size:     size,
	}, nil
}

// Destroy deletes an image from Cloudinary.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	var out struct {
		Result string `json:"result"`
	}
	err := httputil.Retry(ctx, 3, c.delay, func() error {
		params := c.signed(map[string]string{"public_id": publicID})
		body, ctype, err := multipartBody(params, "", "", nil)
		if err != nil {
			return err
		}
		return c.post(ctx, c.endpoint("destroy"), ctype, body, &out)
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeUpload, err, "delete %s from cloudinary", publicID)
	}
	if out.Result != "ok" && out.Result != "not found" {
		return apperr.New(apperr.ErrCodeUpload, "delete %s from cloudinary: result %q", publicID, out.Result)
	}
	return nil
}

func (c *Cloudinary) post(ctx context.Context, url, contentType string, body []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := httputil.Do(c.client, req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s (status %d)", e.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("cloudinary: status %d", resp.StatusCode)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func multipartBody(params map[string]string, filename, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, params[k]); err != nil {
			return nil, "", err
		}
	}

	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var _ Uploader = (*Cloudinary)(nil)
