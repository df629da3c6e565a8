package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shuldan/deepcall"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered components and their methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.once(cmd.Context(), func(_ context.Context, r *deepcall.Registry) error {
				for _, id := range r.IDs() {
					names := make([]string, 0)
					for name := range r.Get(id) {
						names = append(names, name)
					}
					slices.Sort(names)
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, strings.Join(names, ", "))
				}
				return nil
			})
		},
	}
}

func (c *cli) callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <component> <method> [args...]",
		Short: "Invoke a component method",
		Long: "Invoke a component method. Each argument is read as a YAML value, " +
			"so 2 is a number, true a bool and [1, 2] a list.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := deepcall.CallOptions{ID: args[0], Method: args[1], Args: parseArgs(args[2:])}
			return c.once(cmd.Context(), func(ctx context.Context, r *deepcall.Registry) error {
				res, err := r.Call(ctx, opts)
				if err != nil {
					return err
				}
				if !res.Found() {
					fmt.Fprintf(cmd.ErrOrStderr(), "no method %q on component %q\n", opts.Method, opts.ID)
					return nil
				}
				return printValue(cmd, res.Value())
			})
		},
	}
}

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the application and its schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApplication(true)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

// parseArgs reads every argument as YAML, keeping the raw string when it
// does not parse.
func parseArgs(raw []string) []any {
	out := make([]any, 0, len(raw))
	for _, s := range raw {
		var v any
		if err := yaml.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		out = append(out, v)
	}
	return out
}

func printValue(cmd *cobra.Command, v any) error {
	if s, ok := v.(string); ok {
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
