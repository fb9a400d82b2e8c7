package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dixieflatline76/Paperize/pkg/display"
	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// fileSetter copies the prepared image to a file instead of the desktop.
type fileSetter struct {
	fs  afero.Fs
	out string
}

func (s *fileSetter) Supports(wallpaper.Target) bool { return true }

func (s *fileSetter) SetWallpaper(_ context.Context, path string, _ wallpaper.Target) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.out, data, 0o644)
}

func parseScalingFlag(s string) (wallpaper.Scaling, error) {
	for _, sc := range wallpaper.GetScalings() {
		if strings.EqualFold(sc.String(), s) {
			return wallpaper.ParseScaling(sc.String())
		}
	}
	return wallpaper.ScalingInvalid, fmt.Errorf("unknown scaling %q (want fill, fit, stretch or none)", s)
}

func parseScreenFlag(s string) (display.ScreenFunc, error) {
	if s == "" {
		return display.ScreenDimensions, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid screen size %q, want WIDTHxHEIGHT", s)
	}
	return func() (int, int, error) { return w, h, nil }, nil
}

func previewCmd() *cobra.Command {
	var scalingName, screen, out string
	cmd := &cobra.Command{
		Use:   "preview IMAGE",
		Short: "Write IMAGE the way it would be put on the screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scaling, err := parseScalingFlag(scalingName)
			if err != nil {
				return err
			}
			screenFn, err := parseScreenFlag(screen)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			data, err := afero.ReadFile(fs, args[0])
			if err != nil {
				return err
			}
			tmp, err := afero.TempDir(fs, "", "paperize-preview")
			if err != nil {
				return err
			}
			defer fs.RemoveAll(tmp)

			c := display.NewCommitter(tmp,
				display.WithFs(fs),
				display.WithSetter(&fileSetter{fs: fs, out: out}),
				display.WithScreen(screenFn),
			)
			hint, err := c.CropHint(data, scaling)
			if err != nil {
				return err
			}
			if err := c.Apply(cmd.Context(), data, wallpaper.TargetHome, hint); err != nil {
				return err
			}

			if hint.Rect.Empty() {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, scaling)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, crop %v)\n", out, scaling, hint.Rect)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scalingName, "scaling", "fill", "fill, fit, stretch or none")
	cmd.Flags().StringVar(&screen, "screen", "", "screen size as WIDTHxHEIGHT (default is the current screen)")
	cmd.Flags().StringVarP(&out, "out", "o", "preview.jpg", "output file")
	return cmd
}
