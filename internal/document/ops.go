package document

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/drydock/internal/logger"
	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// ErrUnknownOperation is returned by ParseOp for names it does not know.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrBadArgument is returned by ParseOp for malformed operation arguments.
var ErrBadArgument = errors.New("bad operation argument")

// Issue keys for notes added by operations.
const (
	KeyTriangulated = "mesh.triangulated"
	KeyCoalesced    = "mesh.coalesced"
	KeyRecentered   = "mesh.recentered"
	KeySimplified   = "mesh.simplified"
	KeyOperation    = "mesh.operationFailed"
)

// Op is a named geometry operation, parsed from text such as "triangulate",
// "scale=2" or "axes=y,-x,z".
type Op struct {
	Name string
	Arg  string
	run  func(d *Document) error
}

// String returns the op in the form ParseOp accepts.
func (o Op) String() string {
	if o.Arg == "" {
		return o.Name
	}
	return o.Name + "=" + o.Arg
}

type opParser func(arg string) (func(d *Document) error, error)

var opParsers = map[string]opParser{
	"recalc-normals": noArg(func(d *Document) error {
		return d.mesh.RecalculateNormals()
	}),
	"reverse-winding": noArg(func(d *Document) error {
		d.mesh.ReverseWinding()
		return nil
	}),
	"triangulate": noArg(func(d *Document) error {
		if added := d.mesh.Triangulate(); added > 0 {
			issues.Notef(d.issues, KeyTriangulated, "Triangulation added %d faces.", added)
		}
		return nil
	}),
	"flip-x": noArg(func(d *Document) error { d.mesh.FlipX(); return nil }),
	"flip-y": noArg(func(d *Document) error { d.mesh.FlipY(); return nil }),
	"flip-z": noArg(func(d *Document) error { d.mesh.FlipZ(); return nil }),
	"recenter": parseRecenter,
	"scale":    parseScale,
	"coalesce": parseCoalesce,
	"simplify": parseSimplify,
	"axes":     parseAxes,
	"rotate":   parseRotate,
}

// OpNames lists the operations ParseOp accepts.
func OpNames() []string {
	return []string{
		"recalc-normals", "reverse-winding", "triangulate",
		"flip-x", "flip-y", "flip-z",
		"recenter[=mean|bounds]", "scale=s|sx,sy,sz", "coalesce[=tol]",
		"simplify=factor", "axes=x,y,z", "rotate=axis,degrees",
	}
}

// ParseOp parses "name" or "name=arg".
func ParseOp(s string) (Op, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(s), "=")
	parse, ok := opParsers[name]
	if !ok {
		return Op{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	run, err := parse(arg)
	if err != nil {
		return Op{}, fmt.Errorf("%s: %w", name, err)
	}
	return Op{Name: name, Arg: arg, run: run}, nil
}

// Apply runs op on the document's mesh. A failing operation leaves the mesh
// unchanged, adds a Stop issue and returns the error.
func (d *Document) Apply(op Op) error {
	before := d.mesh.Clone()
	if err := op.run(d); err != nil {
		d.mesh = before
		logger.Warn("operation failed", zap.Stringer("op", op), zap.Error(err))
		_ = issues.Stopf(d.issues, KeyOperation, "%s failed: %v.", op, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	diff := before.Compare(d.mesh)
	d.modified = true
	logger.Debug("operation applied",
		zap.Stringer("op", op),
		zap.Bool("identical", diff.Identical()),
		zap.Int("vertexDelta", diff.VertexDelta),
		zap.Int("faceDelta", diff.FaceDelta),
		zap.Bool("sameTopology", diff.SameTopology))
	return nil
}

// ApplyAll applies ops in order and stops at the first failure.
func (d *Document) ApplyAll(ops []Op) error {
	for _, op := range ops {
		if err := d.Apply(op); err != nil {
			return err
		}
	}
	return nil
}

func noArg(run func(d *Document) error) opParser {
	return func(arg string) (func(d *Document) error, error) {
		if arg != "" {
			return nil, fmt.Errorf("%w: takes no argument", ErrBadArgument)
		}
		return run, nil
	}
}

func parseRecenter(arg string) (func(d *Document) error, error) {
	var method mesh.CenterMethod
	if arg != "" {
		m, err := mesh.ParseCenterMethod(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
		}
		method = m
	}
	return func(d *Document) error {
		m := method
		if m == 0 {
			var err error
			if m, err = d.cfg.CenterMethod(); err != nil {
				return err
			}
		}
		offset, ok := d.mesh.Recenter(m)
		if ok {
			issues.Notef(d.issues, KeyRecentered, "Moved by %v using the %s centre.", offset, m)
		}
		return nil
	}, nil
}

func parseScale(arg string) (func(d *Document) error, error) {
	vals, err := parseFloats(arg)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 1:
		vals = []float32{vals[0], vals[0], vals[0]}
	case 3:
	default:
		return nil, fmt.Errorf("%w: want 1 or 3 factors, got %d", ErrBadArgument, len(vals))
	}
	for _, v := range vals {
		if v == 0 {
			return nil, fmt.Errorf("%w: scale factor must not be zero", ErrBadArgument)
		}
	}
	return func(d *Document) error {
		d.mesh.Scale(vals[0], vals[1], vals[2])
		return nil
	}, nil
}

func parseCoalesce(arg string) (func(d *Document) error, error) {
	tol := float32(-1)
	if arg != "" {
		vals, err := parseFloats(arg)
		if err != nil {
			return nil, err
		}
		if len(vals) != 1 || vals[0] < 0 {
			return nil, fmt.Errorf("%w: want one non-negative tolerance", ErrBadArgument)
		}
		tol = vals[0]
	}
	return func(d *Document) error {
		t := tol
		if t < 0 {
			t = d.cfg.Mesh.CoalesceTolerance
		}
		if removed := d.mesh.CoalesceVertices(t); removed > 0 {
			issues.Notef(d.issues, KeyCoalesced, "Merged away %d vertices.", removed)
		}
		return nil
	}, nil
}

func parseSimplify(arg string) (func(d *Document) error, error) {
	vals, err := parseFloats(arg)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%w: want one factor", ErrBadArgument)
	}
	factor := float64(vals[0])
	return func(d *Document) error {
		before := d.mesh.FaceCount()
		if err := d.mesh.Simplify(factor); err != nil {
			return err
		}
		issues.Notef(d.issues, KeySimplified, "Reduced %d faces to %d.", before, d.mesh.FaceCount())
		return nil
	}, nil
}

func parseAxes(arg string) (func(d *Document) error, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want three axes such as y,-x,z", ErrBadArgument)
	}
	var src [3]mesh.AxisSource
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "-") {
			src[i].Negate = true
			p = p[1:]
		}
		a, err := parseAxis(p)
		if err != nil {
			return nil, err
		}
		src[i].Axis = a
	}
	return func(d *Document) error {
		return d.mesh.ReassignAxes(src[0], src[1], src[2])
	}, nil
}

func parseRotate(arg string) (func(d *Document) error, error) {
	name, deg, ok := strings.Cut(arg, ",")
	if !ok {
		return nil, fmt.Errorf("%w: want axis,degrees", ErrBadArgument)
	}
	a, err := parseAxis(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	vals, err := parseFloats(deg)
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("%w: bad angle %q", ErrBadArgument, deg)
	}
	axis := math.Vec3{}.With(a, 1)
	q := math.QuatFromAxisAngle(axis, vals[0]*gomath.Pi/180)
	return func(d *Document) error {
		return d.mesh.Rotate(q)
	}, nil
}

func parseAxis(s string) (math.Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return math.AxisX, nil
	case "y":
		return math.AxisY, nil
	case "z":
		return math.AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: unknown axis %q", ErrBadArgument, s)
	}
}

func parseFloats(arg string) ([]float32, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: missing value", ErrBadArgument)
	}
	var out []float32
	for _, f := range strings.Split(arg, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil || gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bad number %q", ErrBadArgument, f)
		}
		out = append(out, float32(v))
	}
	return out, nil
}
