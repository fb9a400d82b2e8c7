package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func albumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "album",
		Short: "Manage the wallpaper albums",
	}
	cmd.AddCommand(albumAddCmd(), albumSelectCmd(), albumListCmd())
	return cmd
}

func albumAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME DIR",
		Short: "Import every image under DIR into album NAME and select it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			dir, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			n, err := store.ImportDir(cmd.Context(), args[0], dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d wallpapers into %q\n", n, args[0])
			return nil
		},
	}
}

func albumSelectCmd() *cobra.Command {
	var deselect bool
	cmd := &cobra.Command{
		Use:   "select NAME",
		Short: "Include album NAME in the rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetSelected(cmd.Context(), args[0], !deselect); err != nil {
				return err
			}
			verb := "Selected"
			if deselect {
				verb = "Deselected"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", verb, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&deselect, "off", false, "remove the album from the rotation instead")
	return cmd
}

func albumListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the albums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			albums, err := store.Albums(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSELECTED\tWALLPAPERS\tSOURCE")
			for _, a := range albums {
				fmt.Fprintf(w, "%s\t%t\t%d\t%s\n", a.Name, a.Selected, a.Count, a.SourceDir)
			}
			return w.Flush()
		},
	}
}
