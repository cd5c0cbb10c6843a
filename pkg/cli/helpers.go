/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
	"github.com/NVIDIA/vlm-launcher/pkg/serializer"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// newOutputWriter writes to --output, or to the command's stdout.
func newOutputWriter(cmd *cli.Command, format serializer.Format) (serializer.Serializer, error) {
	path := strings.TrimSpace(cmd.String("output"))
	if path == "" || path == serializer.StdoutURI {
		return serializer.NewWriter(format, cmd.Root().Writer), nil
	}
	w, err := serializer.NewFileWriterOrStdout(format, path)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ExitCode maps an error returned by the app to a process exit status.
//
//	0  success
//	1  unsupported platform, invalid arguments, other failures
//	2  canceled or timed out
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 2
	case cnserrors.CodeOf(err) == cnserrors.ErrCodeTimeout:
		return 2
	default:
		return 1
	}
}
