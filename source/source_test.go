package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

func TestAPIClientPull(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"listings":[
			{"id":"L-1","latitude":40.73,"longitude":-74.02,"propertyType":"Apartment",
			 "bedrooms":2,"bathrooms":1,"yearBuilt":1999,"lotSize":900,"price":2400}
		]}`))
	}))
	defer server.Close()

	c := &APIClient{
		baseURL: server.URL,
		apiKey:  "secret",
		client:  server.Client(),
		retry:   &utils.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
		logger:  utils.NewLogger(),
	}

	listings, err := c.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("api key header: got %q", gotKey)
	}
	if len(listings) != 1 || listings[0].ID != "L-1" || listings[0].Price != 2400 {
		t.Errorf("unexpected listings: %+v", listings)
	}
	if listings[0].Source != "api" {
		t.Errorf("source tag: got %q, want api", listings[0].Source)
	}
}

func TestAPIClientPullServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := &APIClient{
		baseURL: server.URL,
		client:  server.Client(),
		retry:   &utils.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond},
		logger:  utils.NewLogger(),
	}

	if _, err := c.Pull(context.Background()); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

type stubPuller struct {
	listings []*models.RawListing
	err      error
	calls    int
}

func (s *stubPuller) Pull(ctx context.Context) ([]*models.RawListing, error) {
	s.calls++
	return s.listings, s.err
}

func TestProviderPrefersAPI(t *testing.T) {
	api := &stubPuller{listings: []*models.RawListing{{ID: "a"}}}
	browser := &stubPuller{listings: []*models.RawListing{{ID: "b"}}}

	p := &Provider{API: api, Browser: browser, Logger: utils.NewLogger()}
	got, src, err := p.Listings(context.Background())
	if err != nil {
		t.Fatalf("listings: %v", err)
	}
	if src != "api" || got[0].ID != "a" {
		t.Errorf("got source %q listing %q", src, got[0].ID)
	}
	if browser.calls != 0 {
		t.Error("browser consulted although API succeeded")
	}
}

func TestProviderFallsBackToBrowser(t *testing.T) {
	api := &stubPuller{err: errors.New("api down")}
	browser := &stubPuller{listings: []*models.RawListing{{ID: "b"}}}

	p := &Provider{API: api, Browser: browser, Logger: utils.NewLogger()}
	got, src, err := p.Listings(context.Background())
	if err != nil {
		t.Fatalf("listings: %v", err)
	}
	if src != "browser" || got[0].ID != "b" {
		t.Errorf("got source %q listing %q", src, got[0].ID)
	}
}

func TestProviderAllSourcesFail(t *testing.T) {
	api := &stubPuller{err: errors.New("api down")}
	browser := &stubPuller{err: errors.New("no chrome")}

	p := &Provider{API: api, Browser: browser, Logger: utils.NewLogger()}
	if _, _, err := p.Listings(context.Background()); err == nil {
		t.Fatal("expected error when every source fails")
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2 bds", 2},
		{"1.5 ba", 1.5},
		{"Studio", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := leadingNumber(tt.in); got != tt.want {
			t.Errorf("leadingNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
