// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package supervisor provides process supervision for bookrec using suture v4.

The tree has two layers:

	RootSupervisor ("bookrec")
	├── DataSupervisor ("data-layer")
	│   └── UpdaterService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The updater is the only writer of the recommendation cache. When it stops
for good (suture.ErrDoNotRestart) the API layer keeps serving the last
published recommendations.

Supervisor events are logged through sutureslog, which writes to the
zerolog backed slog.Logger from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewUpdaterService(updater, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
	<-errCh

	report, err := tree.UnstoppedServiceReport()
*/
package supervisor
