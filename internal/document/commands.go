package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/lod"
	"github.com/myronyliu/Rainbow-Cow/internal/logger"
	"github.com/myronyliu/Rainbow-Cow/internal/mesh"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
)

// Collapse merges v1 into v0.
func (d *Document) Collapse(v0, v1 int, method mesh.Method) error {
	m, err := d.editable()
	if err != nil {
		return err
	}
	return m.Collapse(v0, v1, method)
}

// CollapseRandomEdge collapses one random edge.
func (d *Document) CollapseRandomEdge(method mesh.Method) error {
	m, err := d.editable()
	if err != nil {
		return err
	}
	return m.CollapseRandomEdge(method)
}

// RandomBatch collapses one percent of the live vertices along random edges
// at their midpoints. It returns the number of collapses performed.
func (d *Document) RandomBatch() (int, error) {
	m, err := d.editable()
	if err != nil {
		return 0, err
	}
	n := m.RandomBatchSize()
	for i := 0; i < n; i++ {
		if err := m.CollapseRandomEdge(mesh.Midpoint); err != nil {
			return i, err
		}
	}
	return n, nil
}

// QuadricSimplify collapses the cheapest candidate pair.
func (d *Document) QuadricSimplify() error {
	m, err := d.editable()
	if err != nil {
		return err
	}
	return m.QuadricSimplify()
}

// QuadricBatch runs one batch of quadric steps sized by the candidate count.
func (d *Document) QuadricBatch() (int, error) {
	m, err := d.editable()
	if err != nil {
		return 0, err
	}
	return m.SimplifyN(m.QuadricBatchSize())
}

// SimplifyAll reduces the mesh as far as the candidates allow.
func (d *Document) SimplifyAll() (int, error) {
	m, err := d.editable()
	if err != nil {
		return 0, err
	}
	defer logger.Timed("simplify all", zap.String("path", d.path))()
	return m.SimplifyAll()
}

// SimplifyN runs n quadric steps.
func (d *Document) SimplifyN(n int) (int, error) {
	m, err := d.editable()
	if err != nil {
		return 0, err
	}
	return m.SimplifyN(n)
}

// SimplifyTo runs quadric steps until at most target vertices are live.
func (d *Document) SimplifyTo(target int) (int, error) {
	m, err := d.editable()
	if err != nil {
		return 0, err
	}
	return m.SimplifyTo(target)
}

// SetDistanceThreshold changes the pair distance threshold. Zero selects
// the configured multiple of the average edge length.
func (d *Document) SetDistanceThreshold(t float64) error {
	m, err := d.editable()
	if err != nil {
		return err
	}
	if t == 0 {
		t = d.opts.ThresholdScale * m.AverageEdgeLength()
	}
	m.SetDistanceThreshold(t)
	return nil
}

// AllowFins toggles fin removal. The setting also applies to meshes loaded
// later.
func (d *Document) AllowFins(allow bool) {
	d.opts.AllowFins = allow
	if d.mesh != nil {
		d.mesh.SetAllowFins(allow)
	}
}

// CollapseTo moves a progressive mesh to the given complexity.
func (d *Document) CollapseTo(complexity float64) error {
	if d.nav == nil {
		return d.notProgressive()
	}
	d.nav.SetComplexity(complexity)
	return nil
}

// Grow raises the complexity by the configured multiplier.
func (d *Document) Grow() error {
	if d.nav == nil {
		return d.notProgressive()
	}
	d.nav.Grow(d.cfg.LOD.StepMultiplier)
	return nil
}

// Shrink lowers the complexity by the configured multiplier.
func (d *Document) Shrink() error {
	if d.nav == nil {
		return d.notProgressive()
	}
	d.nav.Shrink(d.cfg.LOD.StepMultiplier)
	return nil
}

// StepUp raises the complexity by the configured increment.
func (d *Document) StepUp() error {
	if d.nav == nil {
		return d.notProgressive()
	}
	d.nav.Step(d.cfg.LOD.StepIncrement)
	return nil
}

// StepDown lowers the complexity by the configured increment.
func (d *Document) StepDown() error {
	if d.nav == nil {
		return d.notProgressive()
	}
	d.nav.Step(-d.cfg.LOD.StepIncrement)
	return nil
}

func (d *Document) notProgressive() error {
	if !d.Loaded() {
		return ErrNoGeometry
	}
	return ErrNotProgressive
}

// EncodePM returns the progressive mesh of the document: the collapse
// history of an editable mesh, or the loaded progressive mesh.
func (d *Document) EncodePM() (*formats.PM, error) {
	switch {
	case d.mesh != nil:
		return lod.Encode(d.mesh)
	case d.pm != nil:
		return d.pm, nil
	default:
		return nil, ErrNoGeometry
	}
}

// WriteProgressiveMeshFile writes the progressive mesh to path. A .pmb
// extension selects the binary encoding, .offpm the text encoding; other
// paths follow the configured output format.
func (d *Document) WriteProgressiveMeshFile(path string) error {
	pm, err := d.EncodePM()
	if err != nil {
		return err
	}
	if d.binaryOutput(path) {
		err = formats.WritePMBFile(path, pm)
	} else {
		err = formats.WritePMFile(path, pm)
	}
	if err != nil {
		return err
	}
	logger.Info("progressive mesh written",
		zap.String("path", path),
		zap.Int("collapses", len(pm.Records)),
		zap.Int("live_vertices", len(pm.Vertices)))
	return nil
}

func (d *Document) binaryOutput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pmb":
		return true
	case ".offpm":
		return false
	}
	return d.cfg.Output.Format == "binary"
}

// ExportOFF writes the live triangles as an OFF file.
func (d *Document) ExportOFF(path string) error {
	g := d.geometry()
	if g == nil {
		return ErrNoGeometry
	}
	if err := formats.WriteOFFFile(path, g.OFF()); err != nil {
		return err
	}
	logger.Info("OFF exported", zap.String("path", path))
	return nil
}

// ExportSTL writes the live triangles as a binary STL file.
func (d *Document) ExportSTL(path string) error {
	g := d.geometry()
	if g == nil {
		return ErrNoGeometry
	}
	name := strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
	if err := formats.WriteSTLFile(path, name, g.OFF()); err != nil {
		return fmt.Errorf("exporting STL: %w", err)
	}
	logger.Info("STL exported", zap.String("path", path))
	return nil
}
