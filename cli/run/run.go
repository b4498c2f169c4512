// Package run wires the run subcommand: everything needed to construct a
// Tap, a Target, a StateStore, and a Runner from flags and environment, then
// execute one end-to-end extract-load.
//
// Grounded on the teacher's cli/client/client.go command shape (env-file
// loading via godotenv, config.Load, flag-to-collaborator wiring).
package run

import (
	"context"
	"encoding/json"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/harness/godotenv/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/harness/elx/internal/config"
	"github.com/harness/elx/internal/logger"
	"github.com/harness/elx/plugin"
	"github.com/harness/elx/plugin/installer"
	"github.com/harness/elx/runner"
	"github.com/harness/elx/state"
	"github.com/harness/elx/tap"
	"github.com/harness/elx/target"
)

type runCommand struct {
	envfile string

	tapExecutable string
	tapSpec       string
	tapConfigPath string
	tapStreams    []string

	targetExecutable string
	targetSpec       string
	targetConfigPath string

	streams         []string
	stateBackendURL string
	secrets         []string
}

func (c *runCommand) run(*kingpin.ParseContext) error {
	if err := godotenv.Load(c.envfile); err != nil {
		logrus.WithError(err).Debugln("no env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Errorln("cannot load configuration")
		return err
	}
	logger.Init(cfg.Debug, cfg.Trace, cfg.LogFormat)

	backendURL := cfg.StateBackendURL
	if c.stateBackendURL != "" {
		backendURL = c.stateBackendURL
	}

	ctx := context.Background()
	backend, err := state.OpenBackend(ctx, backendURL)
	if err != nil {
		logrus.WithError(err).WithField("url", backendURL).Errorln("cannot open state backend")
		return err
	}
	store := state.New(backend)

	inst := installer.NewPathInstaller(cfg.InstallMaxRetries)

	tapConfig, err := loadConfigFile(c.tapConfigPath)
	if err != nil {
		return errors.Wrap(err, "load tap config")
	}
	targetConfig, err := loadConfigFile(c.targetConfigPath)
	if err != nil {
		return errors.Wrap(err, "load target config")
	}

	tp := tap.New(plugin.Spec{
		InstallSpec: c.tapSpec,
		Executable:  c.tapExecutable,
		Config:      plugin.Literal(tapConfig),
	}, inst, emptyToNil(c.tapStreams), nil)

	tg := target.New(plugin.Spec{
		InstallSpec: c.targetSpec,
		Executable:  c.targetExecutable,
		Config:      plugin.Literal(targetConfig),
	}, inst)

	r := runner.New(tp, tg, store, c.secrets, logger.L)

	if err := r.Run(ctx, emptyToNil(c.streams)); err != nil {
		logrus.WithError(err).Errorln("run failed")
		return err
	}

	logrus.WithField("record_counts", r.RecordCounts()).
		WithField("state_file", r.StateFileName()).
		Infoln("run completed")
	return nil
}

// loadConfigFile reads a JSON object from path, or returns an empty config
// if path is unset.
func loadConfigFile(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func emptyToNil(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	return ss
}

// Register adds the run command to app.
func Register(app *kingpin.Application) {
	c := new(runCommand)

	cmd := app.Command("run", "run a tap/target extract-load pipeline").
		Action(c.run)

	cmd.Flag("env-file", "environment file").
		Default(".env").
		StringVar(&c.envfile)

	cmd.Flag("tap-executable", "tap executable name").
		Required().
		StringVar(&c.tapExecutable)
	cmd.Flag("tap-spec", "tap installation locator").
		StringVar(&c.tapSpec)
	cmd.Flag("tap-config", "path to a JSON file with the tap config").
		StringVar(&c.tapConfigPath)
	cmd.Flag("tap-stream", "stream to select for this tap (repeatable; default all)").
		StringsVar(&c.tapStreams)

	cmd.Flag("target-executable", "target executable name").
		Required().
		StringVar(&c.targetExecutable)
	cmd.Flag("target-spec", "target installation locator").
		StringVar(&c.targetSpec)
	cmd.Flag("target-config", "path to a JSON file with the target config").
		StringVar(&c.targetConfigPath)

	cmd.Flag("stream", "stream to include in this run (repeatable; default all selected)").
		StringsVar(&c.streams)
	cmd.Flag("state-backend-url", "override the configured state backend URL").
		StringVar(&c.stateBackendURL)
	cmd.Flag("secret", "value to mask out of captured stderr (repeatable)").
		StringsVar(&c.secrets)
}
