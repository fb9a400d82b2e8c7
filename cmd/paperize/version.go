package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/util"
	"github.com/spf13/cobra"
)

// updateCheckTimeout bounds the GitHub release lookup.
const updateCheckTimeout = 10 * time.Second

// httpClient is used for the update check.
var httpClient = &http.Client{Timeout: updateCheckTimeout}

func appVersion() string {
	if config.AppVersion == "" {
		return "0.0.0"
	}
	return config.AppVersion
}

func versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), appVersion())
			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), updateCheckTimeout)
			defer cancel()
			res, err := util.CheckForUpdates(ctx, httpClient, appVersion())
			if err != nil {
				return err
			}
			if res.UpdateAvailable {
				fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s (%s)\n", res.LatestVersion, res.ReleaseURL)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "You are running the latest version")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
