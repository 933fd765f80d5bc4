// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package logging provides centralized zerolog-based logging for Bookrec.
//
// Every component logs through this package so that the recommendation
// updater, the upstream clients, the HTTP layer and the supervisor tree
// share one output format and one level setting.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("tick", n).Msg("Recommendations tick")
//	logging.Error().Err(err).Msg("Upstream request failed")
//
//	// Request-scoped fields (request_id, correlation_id)
//	logging.Ctx(ctx).Info().Msg("Serving recommendations")
//
// # Components
//
// Long-lived components take a zerolog.Logger at construction time and
// derive a child logger carrying a "component" field:
//
//	logger := logging.WithComponent("recommend-updater")
//
// # Suture Integration
//
// The supervisor tree logs through log/slog. NewSlogLogger returns an
// slog.Logger whose records are written by the global zerolog logger, so
// supervisor events appear in the same stream as application logs.
package logging
