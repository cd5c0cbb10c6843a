package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/mattn/go-isatty"

	"github.com/NVIDIA/vlm-launcher/pkg/defaults"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

// DefaultMaxAttempts bounds how often an invalid answer re-prompts.
const DefaultMaxAttempts = defaults.PromptAttempts

// hintDistance is the largest edit distance that triggers a did-you-mean hint.
const hintDistance = 2

// Selector asks the user to pick a version.
type Selector struct {
	In          io.Reader
	Out         io.Writer
	MaxAttempts int
}

// New creates a Selector on the given streams.
func New(in io.Reader, out io.Writer) *Selector {
	return &Selector{In: in, Out: out, MaxAttempts: DefaultMaxAttempts}
}

// Select returns the version to use. An explicit request wins, a skipped
// prompt yields "latest", otherwise the menu is shown and read from In.
// Empty input and end of input select the first entry. Unknown text is
// accepted as a custom version.
func (s *Selector) Select(candidates []version.Candidate, profile platform.Profile, requested string, skipInteractive bool) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested, nil
	}
	if skipInteractive {
		return DefaultVersion, nil
	}

	entries := BuildMenu(candidates, profile)
	s.printMenu(entries, profile)

	reader := bufio.NewReader(s.In)
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for range attempts {
		fmt.Fprintf(s.Out, "Select version [1-%d] or enter a tag (default 1): ", len(entries))

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read selection: %w", err)
		}
		answer := strings.TrimSpace(line)
		eof := errors.Is(err, io.EOF)

		if answer == "" {
			if eof {
				fmt.Fprintln(s.Out)
			}
			return entries[0].Version, nil
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil {
			if n >= 1 && n <= len(entries) {
				return entries[n-1].Version, nil
			}
			fmt.Fprintf(s.Out, "Invalid choice %d, enter a number between 1 and %d.\n", n, len(entries))
			if eof {
				return entries[0].Version, nil
			}
			continue
		}

		if hint, ok := closest(answer, entries); ok {
			fmt.Fprintf(s.Out, "Using custom version %q (did you mean %q?)\n", answer, hint)
		}
		return answer, nil
	}

	slog.Warn("no valid selection, using default",
		slog.Int("attempts", attempts),
		slog.String("version", entries[0].Version))
	return entries[0].Version, nil
}

func (s *Selector) printMenu(entries []Entry, profile platform.Profile) {
	fmt.Fprintf(s.Out, "Available versions for %s:\n", profile)
	for i, e := range entries {
		if e.Tag != e.Version {
			fmt.Fprintf(s.Out, "  %2d) %-12s (%s)\n", i+1, e.Version, e.Tag)
			continue
		}
		fmt.Fprintf(s.Out, "  %2d) %s\n", i+1, e.Version)
	}
}

// closest returns the nearest menu entry when answer looks like a typo.
func closest(answer string, entries []Entry) (string, bool) {
	best, bestDist := "", hintDistance+1
	for _, e := range entries {
		for _, candidate := range []string{e.Version, e.Tag} {
			if candidate == answer {
				return "", false
			}
			if d := levenshtein.ComputeDistance(answer, candidate); d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	return best, best != ""
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
