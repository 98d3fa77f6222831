// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// stubServer satisfies HTTPServer. ListenAndServe returns listenErr at once
// when set; otherwise it blocks until Shutdown is called.
type stubServer struct {
	listenErr   error
	shutdownErr error

	closeOnce sync.Once
	closed    chan struct{}
	listening chan struct{}
	deadline  chan time.Time
}

func newStubServer() *stubServer {
	return &stubServer{
		closed:    make(chan struct{}),
		listening: make(chan struct{}),
		deadline:  make(chan time.Time, 1),
	}
}

func (s *stubServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	close(s.listening)
	<-s.closed
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(ctx context.Context) error {
	if d, ok := ctx.Deadline(); ok {
		s.deadline <- d
	}
	s.closeOnce.Do(func() { close(s.closed) })
	return s.shutdownErr
}

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	tests := []struct {
		name  string
		given time.Duration
		want  time.Duration
	}{
		{"explicit", 3 * time.Second, 3 * time.Second},
		{"zero falls back", 0, DefaultShutdownTimeout},
		{"negative falls back", -time.Second, DefaultShutdownTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHTTPServerService(newStubServer(), tt.given)
			if svc.shutdownTimeout != tt.want {
				t.Errorf("shutdownTimeout = %v, want %v", svc.shutdownTimeout, tt.want)
			}
			if svc.String() != "http-server" {
				t.Errorf("String() = %q, want http-server", svc.String())
			}
		})
	}
}

func TestHTTPServerService_ShutdownUsesFallbackDeadline(t *testing.T) {
	server := newStubServer()
	svc := NewHTTPServerService(server, 0)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-server.listening
	canceledAt := time.Now()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	d := <-server.deadline
	if got := d.Sub(canceledAt); got < DefaultShutdownTimeout-time.Second || got > DefaultShutdownTimeout+time.Second {
		t.Errorf("shutdown deadline %v after cancel, want about %v", got, DefaultShutdownTimeout)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	errBind := errors.New("address already in use")
	errDrain := errors.New("connections still open")

	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		cancel      bool
		wantErr     error
		wantNil     bool
	}{
		{name: "listen failure is wrapped", listenErr: errBind, wantErr: errBind},
		{name: "closed server is not a failure", listenErr: http.ErrServerClosed, wantNil: true},
		{name: "graceful shutdown", cancel: true, wantErr: context.Canceled},
		{name: "shutdown failure is wrapped", cancel: true, shutdownErr: errDrain, wantErr: errDrain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStubServer()
			server.listenErr = tt.listenErr
			server.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(server, time.Second)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			if tt.cancel {
				<-server.listening
				cancel()
			}

			select {
			case err := <-errCh:
				if tt.wantNil {
					if err != nil {
						t.Errorf("Serve() = %v, want nil", err)
					}
					return
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Serve() = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve() did not return")
			}
		})
	}
}

func TestHTTPServerService_LogsListenAddress(t *testing.T) {
	var buf bytes.Buffer
	previous := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer logging.SetLogger(previous)

	server := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	// The component logger is bound at construction.
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}

	var listening map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		if entry["message"] == "HTTP server listening" {
			listening = entry
		}
	}
	if listening == nil {
		t.Fatalf("no listen entry in logs:\n%s", buf.String())
	}
	if listening["component"] != "http-server" || listening["addr"] != "127.0.0.1:0" {
		t.Errorf("listen entry = %v, want component http-server and addr 127.0.0.1:0", listening)
	}
}

func TestHTTPServerService_StubServerNotLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer logging.SetLogger(previous)

	server := newStubServer()
	server.listenErr = http.ErrServerClosed
	if err := NewHTTPServerService(server, time.Second).Serve(context.Background()); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if strings.Contains(buf.String(), "HTTP server listening") {
		t.Errorf("listen address logged for a server without one:\n%s", buf.String())
	}
}
