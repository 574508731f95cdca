package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrOracleUnavailable wraps every failure to reach the scanner or understand its answer.
// These failures end the run; they are never treated as reported conflicts.
var ErrOracleUnavailable = errors.New("binary scanner unavailable")

// ScanRequest is the input of one scanner call
type ScanRequest struct {
	// Inputs are class files or build output directories
	Inputs []string `json:"inputs"`
	// EEVersion is nil when the EE level is unknown
	EEVersion *string `json:"eeVersion"`
	// MPVersion is nil when the MicroProfile level is unknown
	MPVersion *string `json:"mpVersion"`
	// CurrentFeatures is empty for a sample call
	CurrentFeatures []string `json:"currentFeatures"`
	// Locale is a BCP 47 tag for scanner messages
	Locale string `json:"locale,omitempty"`
}

// Oracle recommends features for compiled application code.
// Reported conflicts are returned as *ConflictError.
type Oracle interface {
	Scan(ctx context.Context, req ScanRequest) ([]string, error)
}

// Session is an Oracle acquired for one resolution
type Session interface {
	Oracle
	Close() error
}

// Binding acquires scanner sessions
type Binding interface {
	Open(ctx context.Context) (Session, error)
}

// ConflictKind distinguishes the two conflicts the scanner reports
type ConflictKind string

const (
	// ExistingFeatureConflict means the configured features conflict with each other
	ExistingFeatureConflict ConflictKind = "existing"
	// UsageConflict means the application's API usage requires incompatible levels
	UsageConflict ConflictKind = "usage"
)

// IsValid checks if the conflict kind value is valid
func (k ConflictKind) IsValid() bool {
	switch k {
	case ExistingFeatureConflict, UsageConflict:
		return true
	}
	return false
}

// ConflictError is a conflict reported by the scanner
type ConflictError struct {
	Kind     ConflictKind
	Features []string
	// Message is the scanner's own description, possibly empty
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict among features [%s]", e.Kind, strings.Join(e.Features, ", "))
}

// IsExistingFeaturesConflict reports whether the configured features are at fault
func (e *ConflictError) IsExistingFeaturesConflict() bool {
	return e.Kind == ExistingFeatureConflict
}
