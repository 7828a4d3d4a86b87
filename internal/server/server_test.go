package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	srv := New(handler, Options{ShutdownTimeout: 5 * time.Second}, quietLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	srv.OnShutdown("store", record("store")).OnShutdown("cache", record("cache"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "cache" || order[1] != "store" {
		t.Errorf("expected LIFO shutdown [cache store], got %v", order)
	}
}

func TestServer_ShutdownErrorsAreJoined(t *testing.T) {
	t.Parallel()

	errStore := errors.New("store close failed")
	srv := New(http.NotFoundHandler(), Options{}, quietLogger())
	srv.OnShutdown("store", func(context.Context) error { return errStore })
	srv.OnShutdown("cache", func(context.Context) error { return nil })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = srv.Serve(ctx, ln)
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNew_Addr(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{Port: 9090}, nil)
	if srv.Addr() != ":9090" {
		t.Errorf("expected addr :9090, got %s", srv.Addr())
	}
}
