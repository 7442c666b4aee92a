package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/polycsg/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// shapeArity is the number of numeric arguments each shape kind takes.
var shapeArity = map[string]int{
	"sphere":   4,
	"cube":     6,
	"cylinder": 7,
}

// parseShape builds a solid from a KIND:ARGS description such as
// "sphere:0,0,0,1". Resolution applies to spheres and cylinders; zero
// selects the package defaults.
func parseShape(spec string, resolution int) (*csg.Csg, error) {
	kind, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("shape %q: expected KIND:ARGS", spec)
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	arity, known := shapeArity[kind]
	if !known {
		kinds := lo.Keys(shapeArity)
		slices.Sort(kinds)
		return nil, fmt.Errorf("shape %q: unknown kind %q (want one of %s)",
			spec, kind, strings.Join(kinds, ", "))
	}

	fields := strings.Split(rest, ",")
	if len(fields) != arity {
		return nil, fmt.Errorf("shape %q: %s takes %d arguments, got %d", spec, kind, arity, len(fields))
	}
	args := make([]float64, arity)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("shape %q: argument %d: %w", spec, i+1, err)
		}
		args[i] = v
	}

	switch kind {
	case "sphere":
		if args[3] <= 0 {
			return nil, fmt.Errorf("shape %q: radius must be positive", spec)
		}
		return csg.Sphere(csg.SphereOptions{
			Center:     v3.Vec{X: args[0], Y: args[1], Z: args[2]},
			Radius:     args[3],
			Resolution: resolution,
		}), nil
	case "cube":
		radius := v3.Vec{X: args[3], Y: args[4], Z: args[5]}
		if radius.X <= 0 || radius.Y <= 0 || radius.Z <= 0 {
			return nil, fmt.Errorf("shape %q: radii must be positive", spec)
		}
		return csg.Cube(csg.CubeOptions{
			Center: v3.Vec{X: args[0], Y: args[1], Z: args[2]},
			Radius: radius,
		}), nil
	default:
		start := v3.Vec{X: args[0], Y: args[1], Z: args[2]}
		end := v3.Vec{X: args[3], Y: args[4], Z: args[5]}
		if start == end {
			return nil, fmt.Errorf("shape %q: cylinder start and end coincide", spec)
		}
		if args[6] <= 0 {
			return nil, fmt.Errorf("shape %q: radius must be positive", spec)
		}
		return csg.Cylinder(csg.CylinderOptions{
			Start:      start,
			End:        end,
			Radius:     args[6],
			Resolution: resolution,
		}), nil
	}
}

// parseShapes parses every spec, stopping at the first error.
func parseShapes(specs []string, resolution int) ([]*csg.Csg, error) {
	shapes := make([]*csg.Csg, 0, len(specs))
	for _, spec := range specs {
		s, err := parseShape(spec, resolution)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
