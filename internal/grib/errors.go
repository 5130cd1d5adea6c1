package grib

import (
	"errors"
	"fmt"
)

// IndexFetchError reports a network-level failure retrieving the textual
// index for a resource. Malformed individual index lines are never
// reported this way; they are silently dropped by the parser.
type IndexFetchError struct {
	URL string
	Err error
}

func (e *IndexFetchError) Error() string {
	return fmt.Sprintf("failed to fetch index %s: %v", e.URL, e.Err)
}

func (e *IndexFetchError) Unwrap() error { return e.Err }

// PartialFetchError reports a failed ranged byte retrieval.
type PartialFetchError struct {
	URL       string
	ByteStart int64
	ByteEnd   *int64
	Err       error
}

func (e *PartialFetchError) Error() string {
	if e.ByteEnd != nil {
		return fmt.Sprintf("failed to fetch bytes %d-%d of %s: %v", e.ByteStart, *e.ByteEnd, e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch bytes %d- of %s: %v", e.ByteStart, e.URL, e.Err)
}

func (e *PartialFetchError) Unwrap() error { return e.Err }

// VariableNotFoundError reports that no index record matched the requested
// variable and level. LevelsSeen carries the level descriptors present for
// the variable code, as diagnostic context for ambiguous level strings;
// it is empty when the variable is absent altogether.
type VariableNotFoundError struct {
	Variable   string
	Level      LevelSelector
	LevelsSeen []string
}

func (e *VariableNotFoundError) Error() string {
	if len(e.LevelsSeen) > 0 {
		return fmt.Sprintf("variable %s not found at %s (available levels: %v)",
			e.Variable, e.Level, e.LevelsSeen)
	}
	return fmt.Sprintf("variable %s not found in inventory", e.Variable)
}

// DecodeError reports that the external decode collaborator rejected the
// fetched bytes or produced no usable grid. Unsupported is set for the
// recognized "unsupported compression" failure kind, which implies a
// systemic capability gap in the decoder rather than a transient fault.
type DecodeError struct {
	Variable    string
	Unsupported bool
	Err         error
}

func (e *DecodeError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("failed to decode %s: compression not supported by decoder: %v", e.Variable, e.Err)
	}
	return fmt.Sprintf("failed to decode %s: %v", e.Variable, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsUnsupportedCompression reports whether err is a decode failure caused
// by a compression scheme the decoder was built without.
func IsUnsupportedCompression(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Unsupported
}
