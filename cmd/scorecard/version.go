package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"scorecard/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := app.BuildInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scorecard %s\n", info.Version)
			if info.BuildTime != "" {
				fmt.Fprintf(out, "built:     %s\n", info.BuildTime)
			}
			if info.BuildID != "" {
				fmt.Fprintf(out, "build id:  %s\n", info.BuildID)
			}
			fmt.Fprintf(out, "go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
