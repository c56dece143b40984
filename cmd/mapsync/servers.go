package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newServersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List the servers in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadSources(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.listServers(ctx)
		},
	}
}

func (a *app) listServers(ctx context.Context) error {
	client := a.catalogClient()
	cat, err := client.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog %s: %w", client.URL(), err)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFASTDL\tMAPS DIRECTORY")
	for _, srv := range cat.Servers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", srv.Name, srv.FastDL, srv.MapsDirectory)
	}
	return tw.Flush()
}
