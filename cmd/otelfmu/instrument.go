package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// controller is the instrumentation surface driven by the control commands.
type controller interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	IsActive() bool
}

// newController returns the controller for an invocation. Tests replace it.
var newController = func(a *app) (controller, error) {
	return a.instrumentor(), nil
}

func newInstrumentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "instrument",
		Short: "Enable FMPy instrumentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(a)
			if err != nil {
				return a.fail("Error instrumenting FMPy", err)
			}
			if c.IsActive() {
				fmt.Fprintln(a.stdout, "FMPy is already instrumented.")
				return nil
			}
			if err := c.Enable(cmd.Context()); err != nil {
				return a.fail("Error instrumenting FMPy", err)
			}
			fmt.Fprintln(a.stdout, "FMPy instrumentation enabled.")
			return nil
		},
	}
}

func newUninstrumentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstrument",
		Short: "Disable FMPy instrumentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(a)
			if err != nil {
				return a.fail("Error uninstrumenting FMPy", err)
			}
			if !c.IsActive() {
				fmt.Fprintln(a.stdout, "FMPy is not currently instrumented.")
				return nil
			}
			if err := c.Disable(cmd.Context()); err != nil {
				return a.fail("Error uninstrumenting FMPy", err)
			}
			fmt.Fprintln(a.stdout, "FMPy instrumentation disabled.")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check instrumentation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(a)
			if err != nil {
				return a.fail("Error checking instrumentation status", err)
			}
			status := "disabled"
			if c.IsActive() {
				status = "enabled"
			}
			fmt.Fprintf(a.stdout, "FMPy instrumentation is %s.\n", status)
			return nil
		},
	}
}
