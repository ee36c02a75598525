package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vspec/internal/config"
	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		yaml      bool
		force     bool
		example   string
		component string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write vspec.json (or vspec.yaml with --yaml) with the default
settings into dir, or the current directory. With --example, also write
an example suite (fluent or fixture) next to it.

Examples:
  vspec init
  vspec init --yaml ./web
  vspec init --example fixture --component Signup ./web`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := runInit(cmd, dir, yaml, force); err != nil {
				return err
			}
			if example == "" {
				return nil
			}
			return runExample(cmd, dir, example, component, force)
		},
	}

	cmd.Flags().BoolVar(&yaml, "yaml", false, "Write YAML instead of JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().StringVar(&example, "example", "", "Also write an example suite: "+strings.Join(templates.List(), ", "))
	cmd.Flags().StringVar(&component, "component", "", "Component name used by the example suite")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, yaml, force bool) error {
	name := config.ConfigFileName
	if yaml {
		name = config.YAMLConfigFileName
	}
	path := filepath.Join(dir, name)

	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.New(errors.CodeConfigExists).
				WithDetail(path + " already exists").
				WithSuggestion("Pass --force to overwrite it")
		}
		warn(out, "Overwriting %s", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	if err := config.New().SaveTo(path); err != nil {
		return err
	}

	success(out, "Wrote %s", path)
	info(out, "Run 'vspec test' to run your suites")
	return nil
}

func runExample(cmd *cobra.Command, dir, name, component string, force bool) error {
	tmpl, err := templates.Get(name)
	if err != nil {
		return err
	}

	cfg := templates.DefaultConfig(dir)
	if component != "" {
		cfg.Component = component
	}

	written, err := tmpl.Create(dir, cfg, force)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range written {
		success(out, "Wrote %s", path)
	}
	return nil
}
