package protocol

import (
	"github.com/mitchellh/mapstructure"

	"github.com/rigwire/rigwire/pkg/domain"
)

// ErrorPolicy selects what the batch engine does when an operation fails.
type ErrorPolicy string

const (
	// PolicyRollback undoes every applied operation and reports failure.
	PolicyRollback ErrorPolicy = "rollback"
	// PolicyContinue records the failure and keeps going.
	PolicyContinue ErrorPolicy = "continue"
	// PolicyStop halts at the first failure, leaving earlier operations applied.
	PolicyStop ErrorPolicy = "stop"
)

// DefaultMaxOperations caps batch size when the client does not say otherwise.
const DefaultMaxOperations = 500

// StandardParams are recognized across all mutating commands. Defaults apply
// when a parameter is absent.
type StandardParams struct {
	DryRun        bool             `mapstructure:"dry_run"`
	Verbosity     domain.Verbosity `mapstructure:"verbosity"`
	OnError       ErrorPolicy      `mapstructure:"on_error"`
	MaxOperations int              `mapstructure:"max_operations"`
	AutoCompile   bool             `mapstructure:"auto_compile"`
}

// DefaultStandardParams returns the documented defaults.
func DefaultStandardParams() StandardParams {
	return StandardParams{
		DryRun:        false,
		Verbosity:     domain.VerbosityNormal,
		OnError:       PolicyRollback,
		MaxOperations: DefaultMaxOperations,
		AutoCompile:   true,
	}
}

// DecodeStandardParams extracts the standard parameters from a command's
// raw params, applying defaults and validating the enums.
func DecodeStandardParams(raw map[string]any) (StandardParams, error) {
	p := DefaultStandardParams()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, &ValidationError{Key: "params", Reason: err.Error()}
	}

	var errs []error
	switch p.Verbosity {
	case domain.VerbosityMinimal, domain.VerbosityNormal, domain.VerbosityFull:
	default:
		errs = append(errs, &ValidationError{Key: "verbosity", Reason: "must be minimal, normal or full", Value: string(p.Verbosity)})
	}
	switch p.OnError {
	case PolicyRollback, PolicyContinue, PolicyStop:
	default:
		errs = append(errs, &ValidationError{Key: "on_error", Reason: "must be rollback, continue or stop", Value: string(p.OnError)})
	}
	if p.MaxOperations <= 0 {
		errs = append(errs, &ValidationError{Key: "max_operations", Reason: "must be positive", Value: p.MaxOperations})
	}
	if len(errs) == 1 {
		return p, errs[0]
	}
	if len(errs) > 0 {
		return p, &AggregateError{Errors: errs}
	}
	return p, nil
}

// StringParam reads an optional string parameter.
func StringParam(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// RequireString reads a mandatory string parameter.
func RequireString(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", &ValidationError{Key: key, Reason: "required parameter is missing"}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ValidationError{Key: key, Reason: "must be a non-empty string", Value: v}
	}
	return s, nil
}

// BoolParam reads an optional bool parameter, returning def when absent.
func BoolParam(raw map[string]any, key string, def bool) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return def
}
