package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"start-page/domain"
)

func TestCurrentDecodesReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "37.566" || q.Get("lon") != "126.9784" || q.Get("appid") != "k" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"cod":200,"name":"Seoul","main":{"temp":12.5},"weather":[{"id":501,"description":"moderate rain"}]}`))
	}))
	defer srv.Close()

	report, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	want := Report{Temp: 13, Description: "moderate rain", Code: 501, Location: "Seoul", Icon: domain.IconRain}
	if report != want {
		t.Fatalf("unexpected report %#v", report)
	}
}

func TestCurrentMissingKeyMakesNoRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	for _, key := range []string{"", "  ", "your_api_key_here"} {
		_, err := NewClient(Config{APIKey: key, BaseURL: srv.URL}).Current(context.Background())
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("key %q: expected ErrMissingAPIKey, got %v", key, err)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no requests, got %d", calls)
	}
}

func TestDecodeReportStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "string cod error", body: `{"cod":"401","message":"Invalid API key."}`, wantErr: "Invalid API key."},
		{name: "numeric cod error", body: `{"cod":404,"message":"city not found"}`, wantErr: "city not found"},
		{name: "string cod ok", body: `{"cod":"200","name":"X","main":{"temp":-0.4},"weather":[{"id":800,"description":"clear sky"}]}`},
		{name: "no message", body: `{"cod":500}`, wantErr: "unexpected status 500"},
		{name: "no conditions", body: `{"cod":200,"main":{"temp":1}}`, wantErr: "weather payload has no conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeReport([]byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeReportRounding(t *testing.T) {
	tests := map[string]int{
		`-0.4`: 0,
		`-0.5`: 0,
		`-1.5`: -1,
		`2.5`:  3,
		`2.49`: 2,
	}
	for temp, want := range tests {
		body := `{"cod":200,"main":{"temp":` + temp + `},"weather":[{"id":803,"description":"clouds"}]}`
		report, err := decodeReport([]byte(body))
		if err != nil {
			t.Fatalf("temp %s: %v", temp, err)
		}
		if report.Temp != want {
			t.Fatalf("temp %s rounded to %d, want %d", temp, report.Temp, want)
		}
	}
}

func TestCurrentRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	if _, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).Current(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
