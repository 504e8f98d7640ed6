// Package cli implements hrisctl, the operator command line for the attendance and leave service.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/attendance-leave-go/internal/app"
)

var (
	// Version is set at build time
	Version = "dev"
)

// Factory builds the application the commands run against.
type Factory func(ctx context.Context) (*app.App, error)

// CLI holds the command tree and the lazily built application.
type CLI struct {
	factory Factory
	app     *app.App
	root    *cobra.Command
	noColor bool
}

func New(factory Factory) *CLI {
	c := &CLI{factory: factory}

	c.root = &cobra.Command{
		Use:           "hrisctl",
		Short:         "Operate attendance and leave balances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if c.noColor {
				DisableColor()
			}
		},
	}
	c.root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable color output")

	c.root.AddCommand(c.versionCmd())
	c.root.AddCommand(c.rolloverCmd())
	c.root.AddCommand(c.balanceCmd())
	c.root.AddCommand(c.provisionCmd())
	c.root.AddCommand(c.tokenCmd())

	return c
}

func (c *CLI) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hrisctl %s\n", Version)
		},
	}
}

// application builds the app on first use so version and help need no storage.
func (c *CLI) application(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.factory(ctx)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// Execute runs the command line with args.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	return c.root.ExecuteContext(ctx)
}

// Root exposes the command tree, used to redirect output.
func (c *CLI) Root() *cobra.Command {
	return c.root
}

// Close releases the application if one was built.
func (c *CLI) Close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
