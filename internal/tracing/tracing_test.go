// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package tracing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Enabled {
		t.Error("Enabled = true, want false")
	}
	if cfg.ServiceName != "bookrec" {
		t.Errorf("ServiceName = %q, want bookrec", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
}

func TestInit_Disabled(t *testing.T) {
	p, err := Init(context.Background(), DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()
	if span.SpanContext().IsSampled() {
		t.Error("span from disabled tracing is sampled")
	}
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	if p.Enabled() {
		t.Error("nil provider reports enabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("nil Shutdown() error = %v", err)
	}
}
