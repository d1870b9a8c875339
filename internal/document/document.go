// Package document ties a mesh file to the engine that edits it. A document
// holds either an editable mesh (OFF or STL input) or a progressive mesh
// (OFFPM or PMB input) navigated by complexity.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/config"
	"github.com/myronyliu/Rainbow-Cow/internal/lod"
	"github.com/myronyliu/Rainbow-Cow/internal/logger"
	"github.com/myronyliu/Rainbow-Cow/internal/mesh"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// Document errors.
var (
	ErrNoGeometry     = errors.New("no geometry loaded")
	ErrUnknownFormat  = errors.New("unknown mesh file format")
	ErrNotProgressive = errors.New("operation requires a progressive mesh")
	ErrNotEditable    = errors.New("progressive meshes support level of detail navigation only")
)

// geometry is the read side shared by editable and progressive meshes.
type geometry interface {
	VertexCount() int
	FaceCount() int
	LiveVertexCount() int
	LiveFaceCount() int
	IsLive(v int) bool
	Position(v int) mgl64.Vec3
	Normal(v int) mgl64.Vec3
	Vertices() []int
	Triangles() [][3]int
	OFF() *formats.OFF
	Bounds() pmath.Bounds
}

// Document is one loaded mesh. It is not safe for concurrent use.
type Document struct {
	cfg    *config.Config
	opts   mesh.Options
	method mesh.Method

	path string
	kind formats.Kind

	mesh *mesh.Mesh
	pm   *formats.PM
	nav  *lod.Navigator
}

// New returns an empty document configured by cfg. A nil cfg selects the
// defaults.
func New(cfg *config.Config) (*Document, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	opts, method, err := OptionsFromConfig(cfg.Simplify)
	if err != nil {
		return nil, err
	}
	return &Document{cfg: cfg, opts: opts, method: method}, nil
}

// Open creates a document and reads path into it.
func Open(path string, cfg *config.Config) (*Document, error) {
	d, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := d.ReadGeometry(path); err != nil {
		return nil, err
	}
	return d, nil
}

// OptionsFromConfig maps simplify settings to engine options and the default
// placement method.
func OptionsFromConfig(c config.SimplifyConfig) (mesh.Options, mesh.Method, error) {
	method, err := mesh.ParseMethod(c.Method)
	if err != nil {
		return mesh.Options{}, 0, err
	}
	opts := mesh.DefaultOptions()
	opts.AllowFins = c.AllowFins
	opts.Aggressive = c.Aggressive
	opts.StrictEdges = c.StrictEdges
	opts.Debug = c.Debug
	opts.Threshold = c.Threshold
	if c.ThresholdScale > 0 {
		opts.ThresholdScale = c.ThresholdScale
	}
	opts.Seed = c.Seed
	return opts, method, nil
}

// ReadGeometry loads path, choosing the format from its contents. On failure
// the previously loaded geometry is kept.
func (d *Document) ReadGeometry(path string) error {
	defer logger.Timed("geometry read", zap.String("path", path))()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	kind := formats.Sniff(path, data)
	switch kind {
	case formats.KindOFF, formats.KindSTL:
		var off *formats.OFF
		if kind == formats.KindOFF {
			off, err = formats.ParseOFF(data)
		} else {
			off, err = formats.ReadSTL(bytes.NewReader(data))
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		m, err := mesh.FromOFF(off, d.opts)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		d.mesh, d.pm, d.nav = m, nil, nil

	case formats.KindOFFPM, formats.KindPMB:
		var pm *formats.PM
		if kind == formats.KindOFFPM {
			pm, err = formats.ParsePM(data)
		} else {
			pm, err = formats.ParsePMB(data)
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		nav, err := lod.NewNavigator(pm)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		d.mesh, d.pm, d.nav = nil, pm, nav

	default:
		return fmt.Errorf("loading %s: %w", path, ErrUnknownFormat)
	}

	d.path, d.kind = path, kind
	logger.Info("document opened",
		zap.String("path", path),
		zap.Stringer("format", kind),
		zap.Int("live_vertices", d.LiveVertexCount()),
		zap.Int("live_faces", d.LiveFaceCount()))
	return nil
}

// Path returns the file the geometry was read from.
func (d *Document) Path() string { return d.path }

// Kind returns the format the geometry was read from.
func (d *Document) Kind() formats.Kind { return d.kind }

// Method returns the configured placement method.
func (d *Document) Method() mesh.Method { return d.method }

// Progressive reports whether the document holds a progressive mesh.
func (d *Document) Progressive() bool { return d.nav != nil }

// Loaded reports whether geometry has been read.
func (d *Document) Loaded() bool { return d.mesh != nil || d.nav != nil }

// Mesh returns the editable mesh, or nil for progressive documents.
func (d *Document) Mesh() *mesh.Mesh { return d.mesh }

// Navigator returns the level of detail navigator, or nil for editable
// documents.
func (d *Document) Navigator() *lod.Navigator { return d.nav }

func (d *Document) geometry() geometry {
	if d.nav != nil {
		return d.nav
	}
	if d.mesh != nil {
		return d.mesh
	}
	return nil
}

// editable returns the mesh or the reason it cannot be edited.
func (d *Document) editable() (*mesh.Mesh, error) {
	switch {
	case d.mesh != nil:
		return d.mesh, nil
	case d.nav != nil:
		return nil, ErrNotEditable
	default:
		return nil, ErrNoGeometry
	}
}

// DefaultOutputPath derives the progressive mesh path from the input path
// and the configured output format.
func (d *Document) DefaultOutputPath() string {
	ext := ".offpm"
	if d.cfg.Output.Format == "binary" {
		ext = ".pmb"
	}
	base := strings.TrimSuffix(d.path, filepath.Ext(d.path))
	if base == "" {
		base = "mesh"
	}
	return base + ext
}
