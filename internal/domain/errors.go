package domain

import "errors"

// Validation errors returned when decoding user input or catalog records.
// The scoring engine itself never returns errors.
var (
	ErrUnknownStage         = errors.New("unknown supply-chain stage")
	ErrUnknownRiskLevel     = errors.New("unknown risk level")
	ErrUnknownChinaExposure = errors.New("unknown china exposure tier")
	ErrUnknownChinaComfort  = errors.New("unknown china comfort")
	ErrInvalidWeight        = errors.New("weight out of range")
	ErrUnknownWeight        = errors.New("unknown weight key")
	ErrInvalidAllocation    = errors.New("allocation out of range")
)

// IsValidation reports whether err stems from invalid user input
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrUnknownStage,
		ErrUnknownRiskLevel,
		ErrUnknownChinaExposure,
		ErrUnknownChinaComfort,
		ErrInvalidWeight,
		ErrUnknownWeight,
		ErrInvalidAllocation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
