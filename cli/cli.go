// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package cli

import (
	"os"

	"github.com/harness/elx/cli/run"

	"github.com/alecthomas/kingpin/v2"
)

// Version is the build version, set via -ldflags at release time.
var Version = "0.0.0-dev"

// Command parses the command line arguments and then executes a
// subcommand program.
func Command() {
	app := kingpin.New("elx-runner", "Runs a Singer tap/target extract-load pipeline")
	app.HelpFlag.Short('h')
	app.Version(Version)
	app.VersionFlag.Short('v')
	run.Register(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
