package signal

import (
	"fmt"
	"math"

	"wavefit/internal/wave"
)

// Kind names a built-in target shape
type Kind string

const (
	KindSine     Kind = "sine"
	KindSawTooth Kind = "sawtooth"
	KindSquare   Kind = "square"
	KindTriangle Kind = "triangle"
	// KindSamples uses Spec.Samples verbatim
	KindSamples Kind = "samples"
)

// Spec describes a target to generate
type Spec struct {
	Kind      Kind      `yaml:"kind" json:"kind"`
	Amplitude float64   `yaml:"amplitude" json:"amplitude"`
	Period    float64   `yaml:"period" json:"period"`
	Phase     float64   `yaml:"phase" json:"phase"`
	Offset    float64   `yaml:"offset" json:"offset"`
	Points    int       `yaml:"points" json:"points"`
	XMin      float64   `yaml:"x_min" json:"x_min"`
	XMax      float64   `yaml:"x_max" json:"x_max"`
	Samples   []float64 `yaml:"samples,omitempty" json:"samples,omitempty"`
}

// DefaultSpec is a unit sine over one period at DefaultResolution points
func DefaultSpec() Spec {
	return Spec{
		Kind:      KindSine,
		Amplitude: 1,
		Period:    2 * math.Pi,
		Points:    DefaultResolution,
		XMin:      0,
		XMax:      2 * math.Pi,
	}
}

// Generate samples the shape described by spec
func Generate(spec Spec) (Target, error) {
	if spec.Kind == KindSamples {
		return NewTarget(spec.XMin, spec.XMax, spec.Samples)
	}

	if spec.Points < 1 {
		return Target{}, fmt.Errorf("target points must be positive, got %d", spec.Points)
	}
	if !(spec.Period > 0) {
		return Target{}, fmt.Errorf("target period must be positive, got %v", spec.Period)
	}

	var shape func(float64) float64
	switch spec.Kind {
	case KindSine:
		shape = math.Sin
	case KindSawTooth:
		shape = func(p float64) float64 {
			v, _ := wave.Primitive(wave.SawTooth, p)
			return v
		}
	case KindSquare:
		shape = func(p float64) float64 {
			if math.Sin(p) >= 0 {
				return 1
			}
			return -1
		}
	case KindTriangle:
		shape = func(p float64) float64 {
			return 2 / math.Pi * math.Asin(math.Sin(p))
		}
	default:
		return Target{}, fmt.Errorf("unknown target kind %q", spec.Kind)
	}

	xs := grid(spec.XMin, spec.XMax, spec.Points)
	samples := make([]float64, len(xs))
	for k, x := range xs {
		samples[k] = spec.Offset + spec.Amplitude*shape(2*math.Pi*x/spec.Period-spec.Phase)
	}
	return NewTarget(spec.XMin, spec.XMax, samples)
}
