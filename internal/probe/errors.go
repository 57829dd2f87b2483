package probe

import "errors"

// ErrInvalidTransform is returned when a probe is registered with a
// non-invertible transform. The probe is kept but stays inactive until a
// later Update corrects it.
var ErrInvalidTransform = errors.New("probe transform is not invertible")

// ErrUnknownProbe is returned by Update for an ID that was never
// registered or has been removed.
var ErrUnknownProbe = errors.New("unknown probe id")
