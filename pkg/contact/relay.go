package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	content "github.com/goliatone/go-content"
)

// DefaultEndpoint is the Web3Forms submission URL.
const DefaultEndpoint = "https://api.web3forms.com/submit"

const service = "web3forms"

// ErrNotConfigured is returned when no access key is set.
var ErrNotConfigured = errors.New("contact: access key is not configured")

// Config holds the relay settings.
type Config struct {
	AccessKey string        `mapstructure:"access_key" yaml:"access_key"`
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Configured reports whether submissions can be relayed.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.AccessKey) != ""
}

// Relay forwards validated forms to Web3Forms.
type Relay struct {
	cfg  Config
	http *http.Client
}

// NewRelay returns a relay. client is optional.
func NewRelay(cfg Config, client *http.Client) *Relay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Relay{cfg: cfg, http: client}
}

// Configured reports whether the access key is set.
func (r *Relay) Configured() bool {
	return r != nil && r.cfg.Configured()
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send validates form and submits it. Validation failures are returned as
// FormErrors before the access key is checked; delivery failures are
// *content.UpstreamError.
func (r *Relay) Send(ctx context.Context, form Form) error {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return err
	}
	if !r.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, strings.NewReader(r.values(form).Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return &content.UpstreamError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &content.UpstreamError{Service: service, Status: resp.StatusCode, Err: err}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		msg := fmt.Sprintf("Web3Forms API returned an error. Status: %d. Please check your access key and configuration.", resp.StatusCode)
		if resp.StatusCode == http.StatusForbidden {
			msg = "Web3Forms API returned 403 Forbidden. Please verify your access key is correct and active."
		}
		return &content.UpstreamError{Service: service, Status: resp.StatusCode, Message: msg}
	}

	var result relayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return &content.UpstreamError{Service: service, Status: resp.StatusCode, Message: "Failed to send email via Web3Forms", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Failed to send email via Web3Forms"
		}
		return &content.UpstreamError{Service: service, Status: resp.StatusCode, Message: msg}
	}
	return nil
}

func (r *Relay) values(form Form) url.Values {
	v := url.Values{}
	v.Set("access_key", r.cfg.AccessKey)
	v.Set("subject", "Request Access - "+form.Name)
	v.Set("from_name", form.Name)
	v.Set("email", form.Email)
	v.Set("name", form.Name)
	v.Set("country", form.Country)
	v.Set("sports", form.Sports)
	v.Set("hobbies_and_interests", form.HobbiesAndInterests)
	v.Set("business", form.Business)
	v.Set("last_trips", form.LastTrips)
	v.Set("comments", form.Comments)
	v.Set("html", RenderHTML(form))
	return v
}

// RenderHTML builds the message body delivered to the site owner. Values are
// escaped and line breaks preserved.
func RenderHTML(form Form) string {
	fields := []struct{ label, value string }{
		{"Name", form.Name},
		{"Email", form.Email},
		{"Country", form.Country},
		{"Sports", form.Sports},
		{"Hobbies and interests", form.HobbiesAndInterests},
		{"Business", form.Business},
		{"Last trips", form.LastTrips},
	}
	var b strings.Builder
	b.WriteString("<h2>New Request Access</h2>\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", f.label, escapeLines(f.value))
	}
	b.WriteString("<p><strong>Comments:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", escapeLines(form.Comments))
	return b.String()
}

func escapeLines(value string) string {
	return strings.ReplaceAll(html.EscapeString(value), "\n", "<br>")
}
