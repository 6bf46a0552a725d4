package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "github.com/goliatone/go-content"
)

func validForm() Form {
	return Form{
		Name:                "Ada Lovelace",
		Email:               "ada@example.com",
		Country:             "UK",
		Sports:              "Sailing",
		HobbiesAndInterests: "Engines",
		Business:            "Analytics",
		LastTrips:           "Italy",
		Comments:            "Looking forward to it.",
	}
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	assert.NoError(t, validForm().Validate())
}

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Form)
		field   string
		message string
	}{
		{"name missing", func(f *Form) { f.Name = "" }, "name", "Name is required"},
		{"name short", func(f *Form) { f.Name = "A" }, "name", "Name must be at least 2 characters"},
		{"name long", func(f *Form) { f.Name = strings.Repeat("a", 101) }, "name", "Name must be less than 100 characters"},
		{"email missing", func(f *Form) { f.Email = "" }, "email", "Email is required"},
		{"email invalid", func(f *Form) { f.Email = "not-an-email" }, "email", "Please enter a valid email address"},
		{"email without tld", func(f *Form) { f.Email = "ada@localhost" }, "email", "Please enter a valid email address"},
		{"sports long", func(f *Form) { f.Sports = strings.Repeat("s", 501) }, "sports", "Sports must be less than 500 characters"},
		{"comments missing", func(f *Form) { f.Comments = "" }, "comments", "Comments are required"},
		{"comments short", func(f *Form) { f.Comments = "too short" }, "comments", "Comments must be at least 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			err := form.Validate()
			var errs FormErrors
			require.True(t, errors.As(err, &errs), "got %v", err)
			require.Len(t, errs, 1)
			assert.Equal(t, FieldError{Field: tt.field, Message: tt.message}, errs[0])
		})
	}
}

func TestValidateCountsCharacters(t *testing.T) {
	form := validForm()
	form.Name = strings.Repeat("é", 100)
	assert.NoError(t, form.Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Form{}.Validate()
	var errs FormErrors
	require.True(t, errors.As(err, &errs))
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"name", "email", "country", "sports", "hobbiesAndInterests", "business", "lastTrips", "comments"}, fields)
}

func TestRenderHTMLEscapesValues(t *testing.T) {
	form := validForm()
	form.Comments = "<script>x</script>\nsecond line"
	out := RenderHTML(form)
	assert.Contains(t, out, "<h2>New Request Access</h2>")
	assert.Contains(t, out, "<p><strong>Comments:</strong></p>\n<p>&lt;script&gt;x&lt;/script&gt;<br>second line</p>")
	assert.NotContains(t, out, "<script>")
}

func TestSendPostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key-1", r.PostForm.Get("access_key"))
		assert.Equal(t, "Request Access - Ada Lovelace", r.PostForm.Get("subject"))
		assert.Equal(t, "Engines", r.PostForm.Get("hobbies_and_interests"))
		assert.Contains(t, r.PostForm.Get("html"), "<strong>Last trips:</strong> Italy")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	relay := NewRelay(Config{AccessKey: "key-1", Endpoint: srv.URL}, srv.Client())
	form := validForm()
	form.Name = "  Ada Lovelace  "
	assert.NoError(t, relay.Send(context.Background(), form))
}

func TestSendUpstreamFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		message     string
	}{
		{"forbidden html", http.StatusForbidden, "text/html", "<html>denied</html>", "Web3Forms API returned 403 Forbidden. Please verify your access key is correct and active."},
		{"other html", http.StatusBadGateway, "text/html", "bad", "Web3Forms API returned an error. Status: 502. Please check your access key and configuration."},
		{"json failure", http.StatusOK, "application/json", `{"success":false,"message":"Invalid access key"}`, "Invalid access key"},
		{"json failure without message", http.StatusBadRequest, "application/json", `{"success":false}`, "Failed to send email via Web3Forms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewRelay(Config{AccessKey: "k", Endpoint: srv.URL}, srv.Client()).Send(context.Background(), validForm())
			var upstream *content.UpstreamError
			require.True(t, errors.As(err, &upstream), "got %v", err)
			assert.Equal(t, tt.message, upstream.Message)
			assert.Equal(t, tt.status, upstream.Status)
		})
	}
}

func TestSendValidatesBeforeRelaying(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := NewRelay(Config{AccessKey: "k", Endpoint: srv.URL}, srv.Client()).Send(context.Background(), Form{})
	var errs FormErrors
	assert.True(t, errors.As(err, &errs))
	assert.False(t, called)
}

func TestSendRequiresAccessKey(t *testing.T) {
	assert.ErrorIs(t, NewRelay(Config{}, nil).Send(context.Background(), validForm()), ErrNotConfigured)
}
