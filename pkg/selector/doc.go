// Package selector picks the image version, either from a flag or from an
// interactive numbered menu.
package selector
