package engine

import (
	"fmt"
	"image"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/hsab/dilay/pkg/geom"
	"github.com/hsab/dilay/pkg/mesh"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: look-at -> look_at
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec so (vec3 ...) results can flow into (camera ...)
// and (box ...).
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp. Pixel coordinates and grid sizes
// are whole numbers, so floats are rejected.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp (SexpBool, or SexpInt where nonzero
// is true).
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpInt:
		return v.Val != 0, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// defaultMeshCells is the marching cubes resolution used when a solid
// does not specify :cells.
const defaultMeshCells = 64

// maxMeshCells bounds the marching cubes grid.
const maxMeshCells = 512

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins operate on the provided Scene, populating it
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *Scene) {

	// -----------------------------------------------------------------------
	// (resolution 800 600)
	// -----------------------------------------------------------------------
	env.AddFunction("resolution", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("resolution requires width and height, got %d arguments", len(args))
		}
		w, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resolution: width: %w", err)
		}
		h, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resolution: height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return zygo.SexpNull, fmt.Errorf("resolution: dimensions must be positive, got %dx%d", w, h)
		}
		s.Camera.SetResolution(w, h)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (camera :eye (vec3 0 0 6) :look-at (vec3 0 0 0) :up (vec3 0 1 0) :fov 45)
	// -----------------------------------------------------------------------
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		eye := v3.Vec{Z: 6}
		center := v3.Vec{}
		up := v3.Vec{Y: 1}

		if v, ok := pa.kw["eye"]; ok {
			p, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: eye: %w", err)
			}
			eye = p
		}
		if v, ok := pa.kw["look-at"]; ok {
			p, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: look-at: %w", err)
			}
			center = p
		}
		if v, ok := pa.kw["up"]; ok {
			p, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: up: %w", err)
			}
			up = p
		}
		if center.Sub(eye).Length() <= geom.Epsilon {
			return zygo.SexpNull, fmt.Errorf("camera: eye and look-at coincide")
		}
		if up.Length() <= geom.Epsilon {
			return zygo.SexpNull, fmt.Errorf("camera: up vector is zero")
		}
		if v, ok := pa.kw["fov"]; ok {
			fov, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("camera: fov: %w", err)
			}
			if fov <= 0 || fov >= 180 {
				return zygo.SexpNull, fmt.Errorf("camera: fov %v out of range (0, 180)", fov)
			}
			s.Camera.SetFOV(fov)
		}
		s.Camera.LookAt(eye, center, up)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 1.5 :cells 64)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		radius := 1.0
		cells := defaultMeshCells

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			radius = f
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %v", radius)
		}
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: cells: %w", err)
			}
			cells = n
		}
		if cells < 2 || cells > maxMeshCells {
			return zygo.SexpNull, fmt.Errorf("sphere: cells must be between 2 and %d, got %d", maxMeshCells, cells)
		}

		s.Solid = mesh.FromSDF(mesh.Sphere(radius), cells)
		return &zygo.SexpInt{Val: int64(s.Solid.TriangleCount())}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 2 1 1) :cells 64)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		size := v3.Vec{X: 1, Y: 1, Z: 1}
		cells := defaultMeshCells

		if v, ok := pa.kw["size"]; ok {
			p, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			size = p
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: size must be positive, got (%g %g %g)", size.X, size.Y, size.Z)
		}
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: cells: %w", err)
			}
			cells = n
		}
		if cells < 2 || cells > maxMeshCells {
			return zygo.SexpNull, fmt.Errorf("box: cells must be between 2 and %d, got %d", maxMeshCells, cells)
		}

		s.Solid = mesh.FromSDF(mesh.Box(size), cells)
		return &zygo.SexpInt{Val: int64(s.Solid.TriangleCount())}, nil
	})

	// -----------------------------------------------------------------------
	// (lasso 150 100 100 40 50 100)
	// -----------------------------------------------------------------------
	env.AddFunction("lasso", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("lasso requires an even run of x y coordinates, got %d values", len(args))
		}
		if len(args) < 4 {
			return zygo.SexpNull, fmt.Errorf("lasso requires at least 2 points, got %d", len(args)/2)
		}

		points := make([]image.Point, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			x, err := toInt(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("lasso: coordinate %d: %w", i, err)
			}
			y, err := toInt(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("lasso: coordinate %d: %w", i+1, err)
			}
			points = append(points, image.Point{X: x, Y: y})
		}
		// Coincident neighbors would collapse the plane between their rays.
		for i := 1; i < len(points); i++ {
			if points[i] == points[i-1] {
				return zygo.SexpNull, fmt.Errorf("lasso: points %d and %d coincide", i-1, i)
			}
		}

		s.Lasso = points
		return &zygo.SexpInt{Val: int64(len(points))}, nil
	})

	// -----------------------------------------------------------------------
	// (offset 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("offset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("offset requires exactly 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: %w", err)
		}
		s.Offset = f
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (reverse true)
	// -----------------------------------------------------------------------
	env.AddFunction("reverse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("reverse requires exactly 1 argument, got %d", len(args))
		}
		b, err := toBool(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reverse: %w", err)
		}
		s.Reverse = b
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (trim)
	// -----------------------------------------------------------------------
	env.AddFunction("trim", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("trim takes no arguments, got %d", len(args))
		}
		res, err := s.runTrim()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trim: %w", err)
		}
		s.Result = res
		return &zygo.SexpInt{Val: int64(res.KeptFaces)}, nil
	})
}
