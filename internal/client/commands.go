// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// Command annotations telling the root how much runtime a command needs.
const (
	needsAnnotation = "needs"
	needsConfig     = "config"
	needsNothing    = "nothing"
)

type cli struct {
	configPath string
	build      models.AppBuildInfo

	cfg    *config.ClientConfig
	app    *App
	logger *logger.Logger
}

// Execute runs the client command line with args and releases the local
// ledger afterwards, whatever the outcome.
func Execute(ctx context.Context, build models.AppBuildInfo, args []string, out, errOut io.Writer) error {
	c := &cli{build: build}
	defer c.shutdown()

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	return root.ExecuteContext(ctx)
}

func (c *cli) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "billkeeper",
		Short:             "Split bills with friends, offline first",
		Long:              "billkeeper keeps shared bills in a local ledger and syncs them with the bill server whenever it is reachable.",
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a JSON or YAML config file")

	cmd.AddCommand(
		c.versionCommand(),
		c.tokenCommand(),
		c.createCommand(),
		c.renameCommand(),
		c.statusCommand(),
		c.addCommand(),
		c.editCommand(),
		c.removeCommand(),
		c.balancesCommand(),
		c.shareCommand(),
		c.joinCommand(),
		c.syncCommand(),
		c.retryCommand(),
		c.refreshCommand(),
		c.watchCommand(),
		c.runCommand(),
		c.pingCommand(),
	)

	return cmd
}

// open loads what the command being run needs: nothing, the config only, or
// the config and the whole client runtime.
func (c *cli) open(cmd *cobra.Command, _ []string) error {
	needs := cmd.Annotations[needsAnnotation]
	if needs == needsNothing {
		return nil
	}

	cfg, err := config.GetClientConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.logger = logger.NewClientLogger("go-bill-client", cfg.App.LogLevel, cfg.Storage.LogDir)

	if needs == needsConfig {
		return nil
	}

	app, err := NewApp(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) shutdown() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		c.logger.Err(err).Str("func", "*cli.shutdown").Msg("closing local storage")
	}
	c.app = nil
}

func (c *cli) bill(ref string) (models.LocalBill, error) {
	return pickBill(c.app.Ledger.List(), ref)
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsAnnotation: needsNothing},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), c.build.String())
		},
	}
}
