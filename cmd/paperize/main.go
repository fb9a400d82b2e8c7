package main

import (
	"os"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paperize",
		Short: config.AppName + " rotates your desktop and lock screen wallpapers",
		Long: config.AppName + ` rotates the home screen and lock screen wallpapers from local
albums on a schedule. Changes can be held back until the screen is off so
the picture never switches while you are looking at it.
`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file (default is "+config.ConfigDir()+"/config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(albumCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
