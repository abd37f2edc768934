package wave

import (
	"fmt"
	"math"
)

// SawToothPeriod is the period of the sawtooth primitive.
const SawToothPeriod = 2 * math.Pi

// WaveFunction identifies the primitive a term is built from
type WaveFunction uint8

const (
	Sine WaveFunction = iota
	SawTooth

	// numWaveFunctions bounds the enumeration, it is never a usable kind
	numWaveFunctions
)

// WaveFunctions lists every usable primitive in declaration order
var WaveFunctions = [...]WaveFunction{Sine, SawTooth}

// Valid reports whether f is one of the usable primitives
func (f WaveFunction) Valid() bool {
	return f < numWaveFunctions
}

func (f WaveFunction) String() string {
	switch f {
	case Sine:
		return "sine"
	case SawTooth:
		return "sawtooth"
	default:
		return fmt.Sprintf("WaveFunction(%d)", uint8(f))
	}
}

// symbol is the short name used when rendering formulas
func (f WaveFunction) symbol() string {
	switch f {
	case Sine:
		return "sin"
	case SawTooth:
		return "saw"
	default:
		return "?"
	}
}

// MarshalText implements encoding.TextMarshaler
func (f WaveFunction) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, &InvariantError{Reason: fmt.Sprintf("cannot encode %s", f)}
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *WaveFunction) UnmarshalText(text []byte) error {
	parsed, err := ParseWaveFunction(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseWaveFunction converts a name such as "sine" or "saw" into a WaveFunction
func ParseWaveFunction(name string) (WaveFunction, error) {
	switch name {
	case "sine", "sin":
		return Sine, nil
	case "sawtooth", "saw":
		return SawTooth, nil
	default:
		return 0, fmt.Errorf("unknown wave function %q", name)
	}
}

// Primitive evaluates the unscaled, unshifted primitive f at x.
func Primitive(f WaveFunction, x float64) (float64, error) {
	switch f {
	case Sine:
		return math.Sin(x), nil
	case SawTooth:
		return sawTooth(x), nil
	default:
		return math.NaN(), &InvariantError{Reason: fmt.Sprintf("term uses %s", f)}
	}
}

func sawTooth(x float64) float64 {
	t := x / SawToothPeriod
	return 2 * (t - math.Floor(t+0.5))
}

// FunctionCoefficients is a single term: Scale * primitive(x - XTranslation)
type FunctionCoefficients struct {
	FunctionType WaveFunction `json:"function_type"`
	Scale        float64      `json:"scale"`
	XTranslation float64      `json:"x_translation"`
}

// At evaluates the term at x
func (c FunctionCoefficients) At(x float64) (float64, error) {
	v, err := Primitive(c.FunctionType, x-c.XTranslation)
	if err != nil {
		return v, err
	}
	return c.Scale * v, nil
}

func (c FunctionCoefficients) String() string {
	if math.Signbit(c.XTranslation) {
		return fmt.Sprintf("%.4g*%s(x + %.4g)", c.Scale, c.FunctionType.symbol(), -c.XTranslation)
	}
	return fmt.Sprintf("%.4g*%s(x - %.4g)", c.Scale, c.FunctionType.symbol(), c.XTranslation)
}
