package cmd

import (
	"fmt"

	"github.com/chazu/polycsg/pkg/config"
	"github.com/chazu/polycsg/pkg/kernel/bspkernel"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info SHAPE",
	Short: "Print name, polygon count, triangle count, volume and bounds of a shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		c, err := parseShape(args[0], cfg.Resolution)
		if err != nil {
			return err
		}
		mesh, err := bspkernel.New().ToMesh(bspkernel.FromCsg(c))
		if err != nil {
			return err
		}
		mesh.PartName = args[0]
		b := c.Bounds()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "part:      %s\n", mesh.PartName)
		fmt.Fprintf(out, "polygons:  %d\n", len(c.Polygons()))
		fmt.Fprintf(out, "triangles: %d\n", mesh.TriangleCount())
		fmt.Fprintf(out, "volume:    %.6g\n", c.Volume())
		fmt.Fprintf(out, "bounds:    (%g, %g, %g) - (%g, %g, %g)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
