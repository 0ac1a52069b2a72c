package hierarchy

import (
	"fmt"

	"github.com/james-bowman/sparse"

	"github.com/schruste/xfem-lite/band"
)

// AssemblyService is the external assembly collaborator. Given a level and a
// geometry snapshot it produces the level's system matrix and active DOF set
// for the requested formulation. Assembly is never performed by this module.
type AssemblyService interface {
	Assemble(level int, form Formulation, geom *Geometry) (a *sparse.CSR, active []int, err error)
}

// CutClassifier is the external cut-cell classification collaborator.
type CutClassifier interface {
	Classify(level int, geom *Geometry) (band.Classification, error)
}

// ProlongationProvider is the external FE-space collaborator supplying the
// prolongation between two consecutive levels' active-DOF spaces.
type ProlongationProvider interface {
	Prolongation(coarse, fine int, geom *Geometry) (*sparse.CSR, error)
}

// ControllerConfig wires the external collaborators and policies into a
// refinement controller.
type ControllerConfig struct {
	Assembly   AssemblyService
	Classifier CutClassifier
	Spaces     ProlongationProvider
	Selector   *band.Selector
	Form       Formulation
	Policy     CoarsePolicy
}

// Controller re-derives active DOF sets and extends or refreshes the
// hierarchy as the external mesh/geometry subsystem evolves. It owns the
// hierarchy it populates.
type Controller struct {
	cfg ControllerConfig
	h   *Hierarchy
}

// NewController validates the collaborator wiring. The hierarchy is created
// by the first Init call.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Assembly == nil || cfg.Classifier == nil || cfg.Spaces == nil {
		return nil, fmt.Errorf("controller: assembly, classifier and prolongation collaborators are all required")
	}
	if cfg.Selector == nil {
		cfg.Selector = &band.Selector{}
	}
	return &Controller{cfg: cfg}, nil
}

// Hierarchy returns the controller's hierarchy, nil before Init.
func (c *Controller) Hierarchy() *Hierarchy { return c.h }

// Init builds level 0 from the coarsest mesh: assemble, classify, select the
// interface band. Calling Init a second time discards the previous hierarchy.
func (c *Controller) Init(geom *Geometry) error {
	a, active, err := c.cfg.Assembly.Assemble(0, c.cfg.Form, geom)
	if err != nil {
		return fmt.Errorf("controller: assembling level 0: %w", err)
	}
	h, err := New(a, active)
	if err != nil {
		return err
	}
	c.h = h
	return c.rebuild(0, a, active, geom)
}

// OnRefine extends the hierarchy by one finer level after the external mesh
// subsystem refined. Coarser levels are left untouched: their matrices stay
// fixed once built (see CoarsePolicy for the geometry-change path).
func (c *Controller) OnRefine(geom *Geometry) error {
	if c.h == nil {
		return fmt.Errorf("controller: OnRefine before Init")
	}
	fine := c.h.Depth()
	a, active, err := c.cfg.Assembly.Assemble(fine, c.cfg.Form, geom)
	if err != nil {
		return fmt.Errorf("controller: assembling level %d: %w", fine, err)
	}
	p, err := c.cfg.Spaces.Prolongation(fine-1, fine, geom)
	if err != nil {
		return fmt.Errorf("controller: prolongation %d->%d: %w", fine-1, fine, err)
	}
	if _, err := c.h.AppendLevel(p, active); err != nil {
		return err
	}
	return c.rebuild(fine, a, active, geom)
}

// OnGeometryChange refreshes levels whose cut-cell classification may have
// moved. Under FreezeCoarse only the finest level is re-assembled; under
// RefreshStale every level whose recorded geometry version predates the
// snapshot is rebuilt, coarsest first.
func (c *Controller) OnGeometryChange(geom *Geometry) error {
	if c.h == nil {
		return fmt.Errorf("controller: OnGeometryChange before Init")
	}
	switch c.cfg.Policy {
	case RefreshStale:
		for i := 0; i < c.h.Depth(); i++ {
			if c.h.At(i).GeomVersion < geom.Version {
				if err := c.refresh(i, geom); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return c.refresh(c.h.Depth()-1, geom)
	}
}

// refresh re-assembles level i and rebuilds it in place.
func (c *Controller) refresh(i int, geom *Geometry) error {
	a, active, err := c.cfg.Assembly.Assemble(i, c.cfg.Form, geom)
	if err != nil {
		return fmt.Errorf("controller: assembling level %d: %w", i, err)
	}
	return c.rebuild(i, a, active, geom)
}

// rebuild classifies, selects the band, and installs the level data.
func (c *Controller) rebuild(i int, a *sparse.CSR, active []int, geom *Geometry) error {
	cl, err := c.cfg.Classifier.Classify(i, geom)
	if err != nil {
		return fmt.Errorf("controller: classifying level %d: %w", i, err)
	}
	bandDofs, err := c.cfg.Selector.SelectBand(len(active), cl)
	if err != nil {
		return fmt.Errorf("controller: band selection on level %d: %w", i, err)
	}
	return c.h.RebuildLevel(i, a, active, bandDofs, geom.Version)
}
