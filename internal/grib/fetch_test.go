package grib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wxslice/wxslice/pkg/logger"
)

func testClient() *Client {
	return NewClient(5*time.Second, logger.NewNop())
}

func TestFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	inv, err := testClient().FetchIndex(context.Background(), srv.URL+"/data.grb2.idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inv) != 4 {
		t.Errorf("want 4 records, have %d", len(inv))
	}
}

func TestFetchIndexHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient().FetchIndex(context.Background(), srv.URL)
	var idxErr *IndexFetchError
	if !errors.As(err, &idxErr) {
		t.Fatalf("want *IndexFetchError, have %T: %v", err, err)
	}
}

func TestFetchRangeHeader(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	end := int64(499999)
	data, err := testClient().FetchRange(context.Background(), srv.URL, 0, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "bytes=0-499999" {
		t.Errorf("want Range header bytes=0-499999, have %q", gotRange)
	}
	if string(data) != "payload" {
		t.Errorf("want body \"payload\", have %q", data)
	}
}

func TestFetchRangeOpenEnded(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.Write([]byte("tail"))
	}))
	defer srv.Close()

	// 200 with the full body is accepted for open-ended ranges
	if _, err := testClient().FetchRange(context.Background(), srv.URL, 500000, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "bytes=500000-" {
		t.Errorf("want Range header bytes=500000-, have %q", gotRange)
	}
}

func TestFetchRangeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	end := int64(99)
	_, err := testClient().FetchRange(context.Background(), srv.URL, 0, &end)
	var rangeErr *PartialFetchError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("want *PartialFetchError, have %T: %v", err, err)
	}
	if rangeErr.ByteStart != 0 || rangeErr.ByteEnd == nil || *rangeErr.ByteEnd != 99 {
		t.Errorf("error should carry the requested range, have start=%d end=%v",
			rangeErr.ByteStart, rangeErr.ByteEnd)
	}
}

func TestCheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("want HEAD request, have %s", r.Method)
		}
		if r.URL.Path == "/present.idx" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient()
	if ok, err := c.CheckAvailability(context.Background(), srv.URL+"/present.idx"); err != nil || !ok {
		t.Errorf("present dataset: want available, have ok=%v err=%v", ok, err)
	}
	if ok, err := c.CheckAvailability(context.Background(), srv.URL+"/missing.idx"); err != nil || ok {
		t.Errorf("missing dataset: want unavailable, have ok=%v err=%v", ok, err)
	}
}
