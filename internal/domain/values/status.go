package values

import (
	"database/sql/driver"
	"fmt"
)

// Status represents the outcome of validating a single document.
type Status string

const (
	// StatusPass indicates the document is valid
	StatusPass Status = "pass"
	// StatusFail indicates the document violates a documentation rule
	StatusFail Status = "fail"
	// StatusError indicates validation could not run (I/O, cancellation)
	StatusError Status = "error"
	// StatusSkipped indicates the document was filtered out of the run
	StatusSkipped Status = "skipped"
)

// Precedence returns the numeric precedence of this status.
// Higher values win when several results are folded into one.
//
// Precedence: Fail (3) > Error (2) > Skipped (1) > Pass (0)
func (s Status) Precedence() int {
	switch s {
	case StatusFail:
		return 3
	case StatusError:
		return 2
	case StatusSkipped:
		return 1
	case StatusPass:
		return 0
	default:
		return -1
	}
}

// IsFailure returns true if this status represents a failure or error
func (s Status) IsFailure() bool {
	return s == StatusFail || s == StatusError
}

// IsSuccess returns true if this status represents success
func (s Status) IsSuccess() bool {
	return s == StatusPass
}

// IsSkipped returns true if this status represents a skip
func (s Status) IsSkipped() bool {
	return s == StatusSkipped
}

// Validate returns an error if the status value is invalid
func (s Status) Validate() error {
	switch s {
	case StatusPass, StatusFail, StatusError, StatusSkipped:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// Value implements driver.Valuer for database/sql
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner for database/sql
func (s *Status) Scan(value interface{}) error {
	if value == nil {
		*s = ""
		return nil
	}

	var status Status
	switch v := value.(type) {
	case string:
		status = Status(v)
	case []byte:
		status = Status(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	if err := status.Validate(); err != nil {
		return err
	}
	*s = status
	return nil
}
