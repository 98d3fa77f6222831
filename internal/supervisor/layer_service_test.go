// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// layerService stands in for a catalog or API layer child. Its first
// failures runs return an error; later runs block until the tree stops it,
// or return exitErr when one is set.
type layerService struct {
	name     string
	failures int32
	exitErr  error

	runs    atomic.Int32
	exits   atomic.Int32
	running chan struct{}
	once    sync.Once
}

func newLayerService(name string) *layerService {
	return &layerService{name: name, running: make(chan struct{})}
}

// failFirst must be called before the service is added to a tree.
func (s *layerService) failFirst(n int32) *layerService {
	s.failures = n
	return s
}

// exitWith must be called before the service is added to a tree.
func (s *layerService) exitWith(err error) *layerService {
	s.exitErr = err
	return s
}

func (s *layerService) Serve(ctx context.Context) error {
	run := s.runs.Add(1)
	defer s.exits.Add(1)

	if run <= s.failures {
		return fmt.Errorf("%s: run %d failed", s.name, run)
	}
	if s.exitErr != nil {
		return s.exitErr
	}

	s.once.Do(func() { close(s.running) })
	<-ctx.Done()
	return ctx.Err()
}

func (s *layerService) String() string {
	return s.name
}

// waitRunning fails the test unless a run reaches its blocking phase in time.
func (s *layerService) waitRunning(t *testing.T) {
	t.Helper()
	select {
	case <-s.running:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never started running (runs=%d)", s.name, s.runs.Load())
	}
}
