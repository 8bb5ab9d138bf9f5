package hibp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSplitHash(t *testing.T) {
	prefix, suffix := SplitHash("password")
	if prefix != "5BAA6" {
		t.Errorf("prefix = %q", prefix)
	}
	if suffix != "1E4C9B93F3F0682250B6CF8331B7EE68FD8" {
		t.Errorf("suffix = %q", suffix)
	}
}

func TestCheckPassword(t *testing.T) {
	prefix, suffix := SplitHash("password")

	var gotPath string
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n%s:3861493\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:0\r\n", suffix)
	}))
	defer srv.Close()

	client := NewClient(quietLogger(), WithBaseURL(srv.URL+"/range"))

	res, err := client.CheckPassword(context.Background(), "password", "secret-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Breached || res.Count != 3861493 {
		t.Errorf("result = %+v", res)
	}

	if gotPath != "/range/"+prefix {
		t.Errorf("path = %q, want /range/%s", gotPath, prefix)
	}
	if strings.Contains(gotPath, suffix) {
		t.Error("request path leaks hash suffix")
	}
	if got := gotHeaders.Get("Add-Padding"); got != "true" {
		t.Errorf("Add-Padding = %q", got)
	}
	if got := gotHeaders.Get("hibp-api-key"); got != "secret-key" {
		t.Errorf("hibp-api-key = %q", got)
	}
	if got := gotHeaders.Get("User-Agent"); got != UserAgent {
		t.Errorf("User-Agent = %q", got)
	}
	for name, values := range gotHeaders {
		for _, v := range values {
			if strings.Contains(v, suffix) {
				t.Errorf("header %s leaks hash suffix", name)
			}
		}
	}
}

func TestCheckPasswordNotBreached(t *testing.T) {
	_, suffix := SplitHash("password")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// lowercase suffix must not match
		fmt.Fprintf(w, "%s:12\nNOT:A:RECORD\n\n", strings.ToLower(suffix))
	}))
	defer srv.Close()

	client := NewClient(quietLogger(), WithBaseURL(srv.URL))

	res, err := client.CheckPassword(context.Background(), "password", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Breached || res.Count != 0 {
		t.Errorf("result = %+v, want not breached", res)
	}
}

func TestCheckPasswordErrors(t *testing.T) {
	_, suffix := SplitHash("password")

	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   apierr.Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid api key",
			status:     http.StatusUnauthorized,
			wantKind:   apierr.KindUpstreamAuth,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgInvalidAPIKey,
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			wantKind:   apierr.KindUpstreamStatus,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "API error: 429",
		},
		{
			name:       "upstream failure",
			status:     http.StatusServiceUnavailable,
			wantKind:   apierr.KindUpstreamStatus,
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "API error: 503",
		},
		{
			name:       "malformed count",
			status:     http.StatusOK,
			body:       suffix + ":many\n",
			wantKind:   apierr.KindUpstreamStatus,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "API error: malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(quietLogger(), WithBaseURL(srv.URL))

			_, err := client.CheckPassword(context.Background(), "password", "key")
			apiErr, ok := err.(*apierr.Error)
			if !ok {
				t.Fatalf("error = %v (%T), want *apierr.Error", err, err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.wantStatus)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestCheckPasswordNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := NewClient(quietLogger(), WithBaseURL(baseURL))

	_, err := client.CheckPassword(context.Background(), "password", "key")
	if !apierr.Is(err, apierr.KindNetwork) {
		t.Fatalf("error = %v, want network error", err)
	}
	if apiErr := err.(*apierr.Error); apiErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.Status)
	}
	if !strings.HasPrefix(err.(*apierr.Error).Message, "Network error: ") {
		t.Errorf("message = %q", err.(*apierr.Error).Message)
	}
}

func TestCheckPasswordCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(quietLogger(), WithBaseURL(srv.URL))

	if _, err := client.CheckPassword(ctx, "password", "key"); !apierr.Is(err, apierr.KindNetwork) {
		t.Fatalf("error = %v, want network error", err)
	}
}

func TestCheckPasswordValidatesBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(quietLogger(), WithBaseURL(srv.URL))

	tests := []struct {
		password, apiKey, wantMsg string
	}{
		{"", "key", MsgPasswordMissing},
		{"", "", MsgPasswordMissing},
		{"password", "", MsgAPIKeyMissing},
	}
	for _, tt := range tests {
		_, err := client.CheckPassword(context.Background(), tt.password, tt.apiKey)
		apiErr, ok := err.(*apierr.Error)
		if !ok || apiErr.Kind != apierr.KindValidation || apiErr.Message != tt.wantMsg {
			t.Errorf("CheckPassword(%q, %q) error = %v, want %q", tt.password, tt.apiKey, err, tt.wantMsg)
		}
	}

	if called {
		t.Error("upstream was called for an invalid request")
	}
}
