// drydock is a CLI utility for inspecting, converting and repairing Oolite
// ship meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/drydock/internal/config"
	"github.com/Faultbox/drydock/internal/document"
	"github.com/Faultbox/drydock/internal/logger"
	"github.com/Faultbox/drydock/pkg/issues"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "convert":
		cmdConvert(cfg, args)
	case "validate", "check":
		cmdValidate(cfg, args)
	case "fix":
		cmdFix(cfg, args)
	case "ops":
		for _, name := range document.OpNames() {
			fmt.Println(name)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		exit(1)
	}
	exit(0)
}

func printUsage() {
	fmt.Println(`drydock - Oolite ship mesh utility

Usage:
  drydock [flags] <command> [options]

Commands:
  info <mesh>                      Show mesh statistics
  convert [-ops list] <in> <out>   Convert between formats (.dat .obj .glb .drydock.yaml)
  validate <mesh>                  Check polygons and texture references
  fix [-o out] <mesh> <op>...      Apply operations and save
  ops                              List operations accepted by fix

Flags:
  -config path      Config file (default ./drydock.yaml or the user config dir)
  -debug            Debug logging
  -log path         Also log to a rotating file
  -max-verts n      Largest face readers accept (3-16)
  -oversize policy  reject, truncate or split oversized faces
  -coplanar-tol f   Coplanarity tolerance
  -convex-tol f     Convexity tolerance
  -coalesce-tol f   Vertex merge distance

Examples:
  drydock info cobra3.dat
  drydock convert cobra3.dat cobra3.obj
  drydock -oversize truncate convert hull.obj hull.dat
  drydock fix -o fixed.dat cobra3.dat triangulate coalesce recenter=bounds`)
}

// exit flushes the logger before leaving.
func exit(code int) {
	logger.Sync()
	os.Exit(code)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exit(1)
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: drydock info <mesh>")
		exit(1)
	}

	doc, err := document.Open(args[0], cfg)
	if err != nil {
		fail("%v", err)
	}
	m := doc.Mesh()
	b := m.Bounds()

	fmt.Printf("File:      %s (%s)\n", doc.Path(), doc.Format())
	fmt.Printf("Name:      %s\n", m.Name())
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Faces:     %d\n", m.FaceCount())
	fmt.Printf("Normals:   %d\n", len(m.Normals()))
	fmt.Printf("TexCoords: %d\n", len(m.TexCoords()))
	fmt.Printf("Size:      %g x %g x %g (length x width x height)\n", m.Length(), m.Width(), m.Height())
	fmt.Printf("Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("Radius:    %g\n", m.MaxRadius())
	fmt.Printf("Triangles: %v\n", !m.HasNonTriangles())

	if mats := m.Materials(); len(mats) > 0 {
		fmt.Println()
		fmt.Println("Materials:")
		for _, mat := range mats {
			if mat.DiffuseMap != "" && mat.DiffuseMap != mat.Name {
				fmt.Printf("  %s (%s)\n", mat.Name, mat.DiffuseMap)
			} else {
				fmt.Printf("  %s\n", mat.Name)
			}
		}
	}
}

func cmdConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	opList := fs.String("ops", "", "Operations to apply before saving, separated by spaces")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: drydock convert [-ops \"op op\"] <in> <out>")
		exit(1)
	}

	doc, err := document.Open(fs.Arg(0), cfg)
	if err != nil {
		fail("%v", err)
	}
	applyOps(doc, strings.Fields(*opList))

	if err := doc.SaveAs(fs.Arg(1)); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Converted: %s -> %s\n", fs.Arg(0), fs.Arg(1))
}

func cmdValidate(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: drydock validate <mesh>")
		exit(1)
	}

	doc, err := document.Open(args[0], cfg)
	if err != nil {
		fail("%v", err)
	}
	textures, err := doc.Validate()
	if err != nil {
		fail("%v", err)
	}

	for _, t := range textures {
		fmt.Printf("Texture: %s %dx%d (%s)\n", t.Path, t.Width, t.Height, t.Format)
	}

	list := doc.Issues()
	fmt.Printf("%d notes, %d warnings, %d stops\n",
		list.Count(issues.Note), list.Count(issues.Warning), list.Count(issues.Stop))
	if list.Count(issues.Warning) > 0 {
		exit(2)
	}
}

func cmdFix(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default: overwrite input)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: drydock fix [-o out] <mesh> <op>...")
		exit(1)
	}

	doc, err := document.Open(fs.Arg(0), cfg)
	if err != nil {
		fail("%v", err)
	}
	applyOps(doc, fs.Args()[1:])

	if *out != "" {
		err = doc.SaveAs(*out)
	} else {
		err = doc.Save()
	}
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Saved: %s (%d vertices, %d faces)\n", doc.Path(), doc.Mesh().VertexCount(), doc.Mesh().FaceCount())
}

// applyOps parses every op before running any of them.
func applyOps(doc *document.Document, specs []string) {
	ops := make([]document.Op, 0, len(specs))
	for _, s := range specs {
		op, err := document.ParseOp(s)
		if err != nil {
			fail("%v", err)
		}
		ops = append(ops, op)
	}
	if err := doc.ApplyAll(ops); err != nil {
		logger.Error("operation failed", zap.Error(err))
		exit(1)
	}
}
