package frames

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMergeFrames(t *testing.T) {
	past := []Entry{{Time: 1020}, {Time: 1000}, {Time: 0}}
	nowcast := []Entry{{Time: 1030}, {Time: -5}}

	got := MergeFrames(past, nowcast)
	want := []int64{1000, 1020, 1030}
	if len(got) != len(want) {
		t.Fatalf("merged %d frames, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMergeFramesAllMalformed(t *testing.T) {
	got := MergeFrames([]Entry{{Time: 0}}, []Entry{{Time: -1}})
	if len(got) != 0 {
		t.Errorf("expected empty merge, got %v", got)
	}
}

func TestFetchFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"radar": {
				"past": [{"time": 1000, "path": "/v2/radar/1000"}, {"time": 1010, "path": "/v2/radar/1010"}],
				"nowcast": [{"time": 1020, "path": "/v2/radar/nowcast_abc"}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	got, err := c.FetchFrames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1000, 1010, 1020}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFetchFramesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.FetchFrames(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFetchFramesMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.FetchFrames(context.Background()); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
