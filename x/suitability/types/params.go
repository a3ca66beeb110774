package types

import "fmt"

const (
	// DefaultMaxDescriptionLength bounds challenge descriptions in bytes.
	DefaultMaxDescriptionLength uint64 = 1024
)

// Params holds the tunable module parameters.
type Params struct {
	MaxDescriptionLength uint64 `json:"max_description_length" yaml:"max_description_length"`
}

// DefaultParams returns default suitability parameters
func DefaultParams() Params {
	return Params{
		MaxDescriptionLength: DefaultMaxDescriptionLength,
	}
}

// Validate performs basic parameter validation.
func (p Params) Validate() error {
	if p.MaxDescriptionLength == 0 {
		return fmt.Errorf("max description length must be positive")
	}
	return nil
}
