package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vspec/internal/config"
	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/internal/watch"
)

type testOptions struct {
	configPath string
	debug      bool
	verbose    bool
	coverage   bool
	race       bool
	run        string
	count      int
	watch      bool
}

func testCmd() *cobra.Command {
	var opts testOptions

	cmd := &cobra.Command{
		Use:   "test [packages...]",
		Short: "Run component tests",
		Long: `Run component tests.

This is a wrapper around 'go test' that validates the vspec
configuration first and passes it to the suites.

Examples:
  vspec test
  vspec test ./components/...
  vspec test --debug --run TestSignup
  vspec test --config ci/vspec.yaml --race
  vspec test --watch ./components/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: nearest vspec.json or vspec.yaml)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log mounts, actions and assertions")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVarP(&opts.coverage, "coverage", "c", false, "Show coverage report")
	cmd.Flags().BoolVar(&opts.race, "race", false, "Enable race detector")
	cmd.Flags().StringVar(&opts.run, "run", "", "Run only tests matching the pattern")
	cmd.Flags().IntVar(&opts.count, "count", 0, "Run each test n times")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run tests when Go files or the config change")

	return cmd
}

func runTest(cmd *cobra.Command, packages []string, opts testOptions) error {
	if !opts.watch {
		return goTest(cmd.Context(), cmd, packages, opts)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	report := func(err error) {
		if err != nil {
			errors.Fprint(cmd.ErrOrStderr(), err)
			return
		}
		success(out, "Tests passed")
	}

	report(goTest(ctx, cmd, packages, opts))
	info(out, "Watching for changes (Ctrl+C to stop)")

	w := watch.New(watch.Config{Paths: []string{"."}})
	err := w.Run(ctx, func(changes []watch.Change) {
		for _, c := range changes {
			info(out, "%s changed: %s", c.Type, c.Path)
		}
		report(goTest(ctx, cmd, packages, opts))
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func goTest(ctx context.Context, cmd *cobra.Command, packages []string, opts testOptions) error {
	env, err := testEnv(opts)
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, "go", goTestArgs(packages, opts)...)
	c.Env = append(os.Environ(), env...)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	c.Stdin = os.Stdin

	if err := c.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return errors.New(errors.CodeTestsFailed).Wrap(err)
		}
		return err
	}
	return nil
}

// testEnv validates the configuration and returns the variables that
// pass it to the test binaries.
func testEnv(opts testOptions) ([]string, error) {
	var env []string
	if opts.configPath != "" {
		path, err := filepath.Abs(opts.configPath)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
		}
		if _, err := config.LoadFile(path); err != nil {
			return nil, err
		}
		env = append(env, config.EnvConfigPath+"="+path)
	} else if _, err := config.LoadFromWorkingDir(); err != nil {
		return nil, err
	}
	if opts.debug {
		env = append(env, config.EnvDebug+"=1")
	}
	return env, nil
}

func goTestArgs(packages []string, opts testOptions) []string {
	if len(packages) == 0 {
		packages = []string{"./..."}
	}

	args := []string{"test"}
	if opts.verbose || opts.debug {
		args = append(args, "-v")
	}
	if opts.coverage {
		args = append(args, "-cover")
	}
	if opts.race {
		args = append(args, "-race")
	}
	if opts.run != "" {
		args = append(args, "-run", opts.run)
	}
	if opts.count > 0 {
		args = append(args, "-count", strconv.Itoa(opts.count))
	}
	return append(args, packages...)
}
