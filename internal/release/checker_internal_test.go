package release

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestChecker_Available(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.4.0","url":"https://example.com/releases/1.4.0"}`))
	}))
	defer server.Close()

	t.Run("newer version reported", func(t *testing.T) {
		checker := NewChecker(server.URL, "1.3.0", testLogger())
		checker.poll(t.Context())

		info := checker.Available()
		if info == nil {
			t.Fatal("expected an available release")
		}
		if info.Version != "1.4.0" {
			t.Errorf("expected version 1.4.0, got %q", info.Version)
		}
	})

	t.Run("same version reports nothing", func(t *testing.T) {
		checker := NewChecker(server.URL, "1.4.0", testLogger())
		checker.poll(t.Context())

		if info := checker.Available(); info != nil {
			t.Errorf("expected no update, got %+v", info)
		}
	})

	t.Run("before first poll reports nothing", func(t *testing.T) {
		checker := NewChecker(server.URL, "1.3.0", testLogger())
		if info := checker.Available(); info != nil {
			t.Errorf("expected no update before polling, got %+v", info)
		}
	})
}

func TestChecker_PollFailureKeepsLastResult(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"version":"1.4.0"}`))
	}))
	defer server.Close()

	checker := NewChecker(server.URL, "1.3.0", testLogger())
	checker.poll(t.Context())

	healthy = false
	checker.poll(t.Context())

	info := checker.Available()
	if info == nil || info.Version != "1.4.0" {
		t.Errorf("expected cached release to survive a failed poll, got %+v", info)
	}
}

func TestChecker_DisabledWithoutFeedURL(t *testing.T) {
	checker := NewChecker("", "1.3.0", testLogger())
	if err := checker.Start(t.Context()); err != nil {
		t.Fatalf("expected disabled checker to return immediately, got %v", err)
	}
	if info := checker.Available(); info != nil {
		t.Errorf("expected no update from a disabled checker, got %+v", info)
	}
}
