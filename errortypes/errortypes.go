package errortypes

import "fmt"

// ConfigReason names the configuration problem carried by a ConfigError.
type ConfigReason string

const (
	MissingCustomerId ConfigReason = "MissingCustomerId"
	InvalidCustomerId ConfigReason = "InvalidCustomerId"
	InvalidParams     ConfigReason = "InvalidParams"
	NoBidders         ConfigReason = "NoBidders"
)

// ConfigError should be used when the caller supplied module configuration can't be used.
// It is raised before any network request is made.
type ConfigError struct {
	Reason  ConfigReason
	Message string
}

func (err *ConfigError) Error() string {
	if err.Message == "" {
		return string(err.Reason)
	}
	return fmt.Sprintf("%s: %s", err.Reason, err.Message)
}

func (err *ConfigError) Code() int {
	return ConfigErrorCode
}

func (err *ConfigError) Severity() Severity {
	return SeverityFatal
}

// TransportError should be used when the profiling service could not be reached, answered
// with a non-2xx status or returned a body that could not be parsed.
//
// The causes are not distinguished by type.
type TransportError struct {
	Message string
}

func (err *TransportError) Error() string {
	return err.Message
}

func (err *TransportError) Code() int {
	return TransportErrorCode
}

func (err *TransportError) Severity() Severity {
	return SeverityFatal
}

// TimeoutError should be used to flag that the profiling service did not answer before the
// configured timeout expired.
type TimeoutError struct {
	Message string
}

func (err *TimeoutError) Error() string {
	return err.Message
}

func (err *TimeoutError) Code() int {
	return TimeoutErrorCode
}

func (err *TimeoutError) Severity() Severity {
	return SeverityFatal
}

// MergeError should be used when a bidder config entry has an unexpected shape or the
// bidder config store failed to read or write it.
type MergeError struct {
	Bidder  string
	Message string
}

func (err *MergeError) Error() string {
	return fmt.Sprintf("bidder %s: %s", err.Bidder, err.Message)
}

func (err *MergeError) Code() int {
	return MergeErrorCode
}

func (err *MergeError) Severity() Severity {
	return SeverityFatal
}
