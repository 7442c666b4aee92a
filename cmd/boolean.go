package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/chazu/polycsg/pkg/config"
	"github.com/chazu/polycsg/pkg/kernel"
	"github.com/chazu/polycsg/pkg/kernel/bspkernel"
	"github.com/deadsy/sdfx/render"
	"github.com/spf13/cobra"
)

// booleanOp combines two solids with one of the kernel's boolean operations.
type booleanOp func(k kernel.Kernel, a, b kernel.Solid) kernel.Solid

func newBooleanCmd(use, short string, op booleanOp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " SHAPE SHAPE...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			shapes, err := parseShapes(args, cfg.Resolution)
			if err != nil {
				return err
			}
			rotate, _ := cmd.Flags().GetString("rotate")
			translate, _ := cmd.Flags().GetString("translate")

			k := bspkernel.New()
			solids := make([]kernel.Solid, len(shapes))
			for i, s := range shapes {
				solids[i] = bspkernel.FromCsg(s)
			}
			result, err := combine(k, op, solids, rotate, translate)
			if err != nil {
				return err
			}
			mesh, err := k.ToMesh(result)
			if err != nil {
				return fmt.Errorf("polycsg: %s: %w", use, err)
			}
			mesh.PartName = use
			if cfg.Verbose {
				log.Printf("%s: %d operands -> %d triangles, volume %.6g",
					mesh.PartName, len(solids), mesh.TriangleCount(), bspkernel.Csg(result).Volume())
			}
			return writeSTL(cfg.Output, result, cfg.Verbose)
		},
	}
	cmd.Flags().String("rotate", "", "rotate the result by X,Y,Z degrees")
	cmd.Flags().String("translate", "", "move the result by X,Y,Z")
	return cmd
}

// combine folds solids left to right with op, then rotates and translates
// the result. Empty rotate or translate strings skip that step.
func combine(k kernel.Kernel, op booleanOp, solids []kernel.Solid, rotate, translate string) (kernel.Solid, error) {
	result := solids[0]
	for _, s := range solids[1:] {
		result = op(k, result, s)
	}
	if rotate != "" {
		r, err := parseVec3(rotate)
		if err != nil {
			return nil, fmt.Errorf("--rotate: %w", err)
		}
		result = k.Rotate(result, r[0], r[1], r[2])
	}
	if translate != "" {
		t, err := parseVec3(translate)
		if err != nil {
			return nil, fmt.Errorf("--translate: %w", err)
		}
		result = k.Translate(result, t[0], t[1], t[2])
	}
	return result, nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return v, fmt.Errorf("%q: expected X,Y,Z", s)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return v, fmt.Errorf("%q: component %d: %w", s, i+1, err)
		}
		v[i] = x
	}
	return v, nil
}

// writeSTL saves the fanned triangles of s to path.
func writeSTL(path string, s kernel.Solid, verbose bool) error {
	triangles := bspkernel.Csg(s).Triangles()
	if len(triangles) == 0 {
		return fmt.Errorf("polycsg: result is empty, nothing written to %s", path)
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("polycsg: writing %s: %w", path, err)
	}
	if verbose {
		log.Printf("wrote %d triangles to %s", len(triangles), path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(
		newBooleanCmd("union", "Union of all shapes", kernel.Kernel.Union),
		newBooleanCmd("subtract", "First shape minus every other shape", kernel.Kernel.Difference),
		newBooleanCmd("intersect", "Volume common to all shapes", kernel.Kernel.Intersection),
	)
}
