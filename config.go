package implicit

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Config holds the extraction settings. A Config is a plain value: it is
// copied into every extraction call and never modified by the extractors,
// so one Config may be shared freely between concurrent calls.
type Config struct {
	// Adaptive selects the vertex that best describes the field. In marching cubes
	// crossing points are refined beyond linear interpolation. In dual contouring
	// cell vertices are placed by least squares instead of at the cell midpoint.
	Adaptive bool `yaml:"adaptive"`
	// Clip clamps dual contouring vertices into their cell after the solve.
	Clip bool `yaml:"clip"`
	// Boundary constrains the dual contouring least squares solve to the cell.
	Boundary bool `yaml:"boundary"`
	// Bias adds equations pulling dual contouring vertices towards the
	// centroid of the cell's crossing points.
	Bias bool `yaml:"bias"`
	// BiasStrength is the weight of the bias equations relative to
	// the unit weight of the gradient equations.
	BiasStrength float64 `yaml:"bias_strength"`
	// Bounds is the default domain to evaluate over. The extractors take
	// their bounds as an argument and never read it, so Validate ignores it.
	Bounds r3.Box `yaml:"bounds"`
	// CellSize is the target edge length of grid cells. The grid step on each
	// axis is the largest step no longer than CellSize that divides the bounds evenly.
	CellSize float64 `yaml:"cell_size"`
	// RefineSteps is the number of false position steps used to refine
	// adaptive marching cubes crossings.
	RefineSteps int `yaml:"refine_steps"`
	// Triangulate splits dual contouring quads into two triangles.
	Triangulate bool `yaml:"triangulate"`
	// Workers limits the goroutines used per extraction. Zero means runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers"`
	// MaxCells bounds the number of grid cells of a single extraction.
	MaxCells int `yaml:"max_cells"`
}

// DefaultConfig returns the default extraction settings.
func DefaultConfig() Config {
	return Config{
		Adaptive:     true,
		Clip:         false,
		Boundary:     true,
		Bias:         true,
		BiasStrength: 0.01,
		Bounds:       Cube(10),
		CellSize:     1,
		RefineSteps:  1,
		MaxCells:     1 << 24,
	}
}

// Validate checks the configuration values the extractors use are usable.
func (c Config) Validate() error {
	switch {
	case c.BiasStrength < 0 || !finite(c.BiasStrength):
		return fmt.Errorf("%w: bias strength %g must be finite and non-negative", ErrInvalidConfig, c.BiasStrength)
	case c.CellSize <= 0 || !finite(c.CellSize):
		return fmt.Errorf("%w: cell size %g must be finite and positive", ErrInvalidConfig, c.CellSize)
	case c.RefineSteps < 0:
		return fmt.Errorf("%w: negative refine steps %d", ErrInvalidConfig, c.RefineSteps)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	case c.MaxCells <= 0:
		return fmt.Errorf("%w: max cells %d must be positive", ErrInvalidConfig, c.MaxCells)
	}
	return nil
}

// NumWorkers returns the number of goroutines an extraction may use.
func (c Config) NumWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ReadConfig decodes a YAML document over DefaultConfig and validates the result,
// default bounds included. Fields absent from the document keep their default value.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if err := ValidateBounds(cfg.Bounds); err != nil {
		return Config{}, fmt.Errorf("%w: default bounds: %s", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// CellCount returns the number of cells along an axis of the given length.
func (c Config) CellCount(length float64) int {
	n := math.Ceil(length/c.CellSize - 1e-9)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
