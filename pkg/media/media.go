// Package media uploads editor assets to Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"

	content "github.com/goliatone/go-content"
)

// DefaultFolder groups uploads made from the editor.
const DefaultFolder = "landing-page"

const service = "cloudinary"

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("media: cloudinary not configured")

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string `mapstructure:"cloud_name" yaml:"cloud_name"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"`
	Folder    string `mapstructure:"folder" yaml:"folder"`
	// UploadPrefix overrides the API host, used by tests.
	UploadPrefix string `mapstructure:"upload_prefix" yaml:"upload_prefix"`
}

// Configured reports whether every credential is present.
func (c Config) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// UploadOptions tune a single upload.
type UploadOptions struct {
	Folder   string
	Filename string
}

// Asset describes an uploaded file.
type Asset struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	Format       string `json:"format"`
	ResourceType string `json:"resourceType"`
}

// SignedParams lets a browser upload straight to Cloudinary.
type SignedParams struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// Uploader wraps a Cloudinary client.
type Uploader struct {
	cfg Config
	cld *cloudinary.Cloudinary
	now func() time.Time
}

// New returns an uploader. An unconfigured uploader is valid and reports
// ErrNotConfigured from every call.
func New(cfg Config) (*Uploader, error) {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	u := &Uploader{cfg: cfg, now: time.Now}
	if !cfg.Configured() {
		return u, nil
	}
	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	conf.URL.Secure = true
	if cfg.UploadPrefix != "" {
		conf.API.UploadPrefix = strings.TrimRight(cfg.UploadPrefix, "/")
	}
	// the admin and upload APIs each keep a copy of conf
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	u.cld = cld
	return u, nil
}

// Configured reports whether uploads are possible.
func (u *Uploader) Configured() bool {
	return u != nil && u.cld != nil
}

// Upload streams r to Cloudinary, letting it detect the resource type.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (Asset, error) {
	if !u.Configured() {
		return Asset{}, ErrNotConfigured
	}
	if r == nil {
		return Asset{}, errors.New("media: no file provided")
	}
	params := uploader.UploadParams{
		Folder:       u.folder(opts.Folder),
		ResourceType: "auto",
	}
	if name := publicIDFor(opts.Filename); name != "" {
		params.PublicID = name
		params.UniqueFilename = api.Bool(true)
	}
	result, err := u.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return Asset{}, &content.UpstreamError{Service: service, Err: err}
	}
	if result == nil {
		return Asset{}, &content.UpstreamError{Service: service, Message: "Failed to upload file"}
	}
	if result.Error.Message != "" {
		return Asset{}, &content.UpstreamError{Service: service, Message: result.Error.Message}
	}
	return Asset{
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		Format:       result.Format,
		ResourceType: result.ResourceType,
	}, nil
}

// Sign returns parameters for a signed direct upload. A zero timestamp uses
// the current time.
func (u *Uploader) Sign(folder string, timestamp int64) (SignedParams, error) {
	if u == nil || !u.cfg.Configured() {
		return SignedParams{}, ErrNotConfigured
	}
	if timestamp == 0 {
		timestamp = u.now().Unix()
	}
	folder = u.folder(folder)
	values := url.Values{}
	values.Set("folder", folder)
	values.Set("timestamp", strconv.FormatInt(timestamp, 10))
	signature, err := api.SignParameters(values, u.cfg.APISecret)
	if err != nil {
		return SignedParams{}, fmt.Errorf("media: sign: %w", err)
	}
	return SignedParams{
		CloudName: u.cfg.CloudName,
		APIKey:    u.cfg.APIKey,
		Folder:    folder,
		Timestamp: timestamp,
		Signature: signature,
	}, nil
}

func (u *Uploader) folder(requested string) string {
	requested = strings.Trim(strings.TrimSpace(requested), "/")
	if requested == "" || strings.Contains(requested, "..") {
		return u.cfg.Folder
	}
	return requested
}

// publicIDFor strips the extension and any path from a client filename.
func publicIDFor(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
