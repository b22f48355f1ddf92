package photolab

import "fmt"

// Param is one of the non-destructive edit parameters.
type Param int

const (
	ParamExposure Param = iota
	ParamTemperature
	ParamTint
	ParamContrast
	ParamSaturation
	ParamBlur
)

// Params lists every edit parameter in display order.
var Params = []Param{ParamExposure, ParamTemperature, ParamTint, ParamContrast, ParamSaturation, ParamBlur}

// Property returns the notification identifier for p.
func (p Param) Property() Property {
	switch p {
	case ParamExposure:
		return Exposure
	case ParamTemperature:
		return Temperature
	case ParamTint:
		return Tint
	case ParamContrast:
		return Contrast
	case ParamSaturation:
		return Saturation
	case ParamBlur:
		return Blur
	}
	return Property(fmt.Sprintf("Param(%d)", int(p)))
}

func (p Param) String() string {
	return string(p.Property())
}

// Default returns the value at which p leaves the image untouched.
func (p Param) Default() float64 {
	if p == ParamSaturation {
		return 1
	}
	return 0
}

// ParseParam maps a property name such as "Exposure" back to its Param.
func ParseParam(s string) (Param, error) {
	for _, p := range Params {
		if string(p.Property()) == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown edit parameter %q", s)
}

// Edits is a snapshot of the edit parameters of a Record.
type Edits struct {
	Exposure    float64
	Temperature float64
	Tint        float64
	Contrast    float64
	Saturation  float64
	Blur        float64
}

// DefaultEdits returns edits that leave an image unchanged.
func DefaultEdits() Edits {
	return Edits{Saturation: 1}
}

func (e *Edits) field(p Param) *float64 {
	switch p {
	case ParamExposure:
		return &e.Exposure
	case ParamTemperature:
		return &e.Temperature
	case ParamTint:
		return &e.Tint
	case ParamContrast:
		return &e.Contrast
	case ParamSaturation:
		return &e.Saturation
	case ParamBlur:
		return &e.Blur
	}
	panic(fmt.Sprintf("photolab: invalid edit parameter %d", int(p)))
}

// Get returns the value of p.
func (e Edits) Get(p Param) float64 {
	return *e.field(p)
}

// Dirty reports whether any parameter differs from its default.
func (e Edits) Dirty() bool {
	for _, p := range Params {
		if !equal(e.Get(p), p.Default()) {
			return true
		}
	}
	return false
}

// equal is == except that NaN equals NaN.
func equal[T comparable](a, b T) bool {
	if a == b {
		return true
	}
	// only NaN is unequal to itself
	return a != a && b != b
}
