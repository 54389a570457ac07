package firebase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGetNullSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "")

	var out map[string]any
	if err := c.Get(context.Background(), "stations", &out); !errors.Is(err, ErrNullSnapshot) {
		t.Fatalf("expected ErrNullSnapshot, got %v", err)
	}
}

func TestQueryLatestParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"-a": {"timestamp": 1}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret")

	docs, err := c.QueryLatest(context.Background(), "quinta-01", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	if gotQuery.Get("orderBy") != `"timestamp"` {
		t.Fatalf("unexpected orderBy: %q", gotQuery.Get("orderBy"))
	}
	if gotQuery.Get("limitToLast") != "30" {
		t.Fatalf("unexpected limitToLast: %q", gotQuery.Get("limitToLast"))
	}
	if gotQuery.Get("auth") != "secret" {
		t.Fatalf("auth token not forwarded: %q", gotQuery.Get("auth"))
	}
}

func TestQuerySinceParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "")

	docs, err := c.QuerySince(context.Background(), "quinta-01", 1700000000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("null collection should decode to empty map, got %v", docs)
	}

	if gotQuery.Get("startAt") != "1700000000" {
		t.Fatalf("unexpected startAt: %q", gotQuery.Get("startAt"))
	}
	if gotQuery.Get("limitToFirst") != "10" {
		t.Fatalf("unexpected limitToFirst: %q", gotQuery.Get("limitToFirst"))
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "")

	if _, err := c.QueryLatest(context.Background(), "quinta-01", 1); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestInvalidLimit(t *testing.T) {
	c := NewClient(&http.Client{}, "http://unused.invalid", "")

	if _, err := c.QueryLatest(context.Background(), "quinta-01", 0); err == nil {
		t.Fatal("expected error for limit 0")
	}
	if _, err := c.QuerySince(context.Background(), "quinta-01", 0, -1); err == nil {
		t.Fatal("expected error for negative limit")
	}
}
