package ga

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"wavefit/internal/wave"
)

// HyperParameters tune selection and mutation
type HyperParameters struct {
	StartingFunctions              int     `yaml:"starting_functions" json:"starting_functions" validate:"gte=0,max_functions"`
	SelectionFraction              float64 `yaml:"selection_fraction" json:"selection_fraction" validate:"gt=0,lte=1"`
	MutationProbability            float64 `yaml:"mutation_probability" json:"mutation_probability" validate:"gte=0,lte=1"`
	MutationStrength               float64 `yaml:"mutation_strength" json:"mutation_strength" validate:"gte=0,finite"`
	FunctionAdditionProbability    float64 `yaml:"function_addition_probability" json:"function_addition_probability" validate:"gte=0,lte=1"`
	FunctionSubtractionProbability float64 `yaml:"function_subtraction_probability" json:"function_subtraction_probability" validate:"gte=0,lte=1"`
}

// DefaultHyperParameters returns the stock tuning
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		StartingFunctions:              1,
		SelectionFraction:              0.2,
		MutationProbability:            0.1,
		MutationStrength:               0.2,
		FunctionAdditionProbability:    0.1,
		FunctionSubtractionProbability: 0.1,
	}
}

// Validate reports every out-of-range field as a ConfigError
func (h HyperParameters) Validate() error {
	return ValidateStruct(h)
}

// ErrConfiguration is the root of every configuration error
var ErrConfiguration = errors.New("configuration error")

// ConfigError describes one rejected configuration field
type ConfigError struct {
	Field string
	Rule  string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %v violates %s", ErrConfiguration, e.Field, e.Value, e.Rule)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("max_functions", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= wave.MaxFunctions
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// ValidateStruct runs the validate tags of v and joins the failures into
// ConfigErrors keyed by their yaml path.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		errs = append(errs, &ConfigError{
			Field: fieldPath(fe.Namespace()),
			Rule:  rule,
			Value: fe.Value(),
		})
	}
	return errors.Join(errs...)
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
