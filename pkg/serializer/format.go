package serializer

import "slices"

// Format is an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// StdoutURI is the output path meaning standard output.
const StdoutURI = "-"

// SupportedFormats returns the format names accepted on the command line.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	return !slices.Contains(SupportedFormats(), string(f))
}
