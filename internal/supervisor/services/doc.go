// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package services provides suture.Service wrappers for bookrec components.

UpdaterService drives recommend.Updater: it ticks once on start and then at
a fixed interval. A failed tick stops the service with suture.ErrDoNotRestart
unless the configuration asks for restarts, in which case the wrapped error
is returned and suture applies its backoff.

HTTPServerService adapts http.Server's blocking ListenAndServe to suture's
context-aware Serve and shuts the server down gracefully on cancellation.
*/
package services
