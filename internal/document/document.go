// Package document manages an editing session on a single mesh file.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/drydock/internal/assets"
	"github.com/Faultbox/drydock/internal/config"
	"github.com/Faultbox/drydock/internal/logger"
	"github.com/Faultbox/drydock/pkg/formats"
	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// ErrNoPath is returned when saving a document that was never given a path.
var ErrNoPath = errors.New("document has no path")

// Document owns one mesh together with the file it came from and the issues
// collected while working on it. A Document is not safe for concurrent use.
type Document struct {
	path     string
	format   formats.Format
	mesh     *mesh.Mesh
	cfg      *config.Config
	issues   *issues.List
	modified bool
}

// New wraps an in-memory mesh in an unsaved document.
func New(m *mesh.Mesh, cfg *config.Config) *Document {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Document{mesh: m, cfg: cfg, issues: issues.NewList(), modified: true}
}

// Open reads the mesh at path. The format is chosen by extension. Issues
// raised while reading are logged and kept on the document.
func Open(path string, cfg *config.Config) (*Document, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	f := formats.DetectFormat(path)
	if f == formats.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", formats.ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.ReaderOptions(modelName(path))
	if err != nil {
		return nil, err
	}

	list := issues.NewList()
	m, err := formats.Read(f, data, opts, list)
	logger.Issues(path, list)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	logger.Info("mesh opened",
		zap.String("path", path),
		zap.Stringer("format", f),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("faces", m.FaceCount()))

	return &Document{path: path, format: f, mesh: m, cfg: cfg, issues: list}, nil
}

// Path returns the file the document was last opened from or saved to.
func (d *Document) Path() string { return d.path }

// Format returns the format of Path.
func (d *Document) Format() formats.Format { return d.format }

// Mesh returns the document's mesh.
func (d *Document) Mesh() *mesh.Mesh { return d.mesh }

// Issues returns every issue collected since the document was opened.
func (d *Document) Issues() *issues.List { return d.issues }

// Modified reports whether the mesh changed since it was last saved.
func (d *Document) Modified() bool { return d.modified }

// Save writes the mesh back to its own path.
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoPath
	}
	return d.SaveAs(d.path)
}

// SaveAs writes the mesh to path in the format implied by its extension.
// OBJ output gets a material library next to it when the mesh has
// materials. On success the document takes path as its own.
func (d *Document) SaveAs(path string) error {
	f := formats.DetectFormat(path)
	if f == formats.FormatUnknown {
		return fmt.Errorf("%w: %s", formats.ErrUnknownFormat, path)
	}

	list := issues.NewList()
	m := d.mesh
	if f == formats.FormatOBJ && len(m.Materials()) > 0 {
		// mtllib names the library after the mesh.
		m = m.Clone()
		m.SetName(modelName(path))
	}
	data, err := formats.Write(f, m, list)
	logger.Issues(path, list)
	d.issues.Merge(list)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	if f == formats.FormatOBJ && len(m.Materials()) > 0 {
		mtl := filepath.Join(filepath.Dir(path), m.Name()+".mtl")
		if err := os.WriteFile(mtl, formats.WriteMTL(m), 0644); err != nil {
			return err
		}
	}

	logger.Info("mesh saved",
		zap.String("path", path),
		zap.Stringer("format", f),
		zap.Int("bytes", len(data)))

	d.path = path
	d.format = f
	d.modified = false
	return nil
}

// Validate checks polygon shape and texture references. Textures are
// searched for the way an expansion pack lays them out around the mesh
// file. It returns the textures that could be read.
func (d *Document) Validate() ([]formats.TextureInfo, error) {
	list := issues.NewList()
	ok := d.mesh.FindBadPolygons(list, d.cfg.Mesh.Tolerances)
	var textures []formats.TextureInfo
	if ok {
		textures = formats.CheckTexturesWith(d.mesh, assets.ForMesh(d.path), list)
	}
	logger.Issues(d.name(), list)
	d.issues.Merge(list)
	return textures, list.Err()
}

func (d *Document) name() string {
	if d.path != "" {
		return d.path
	}
	return d.mesh.Name()
}

// modelName derives a model name from a file name: the base name without
// any mesh extension.
func modelName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{formats.DocumentExt, ".drydock.yml"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
