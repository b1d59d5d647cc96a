// Package xcodebuild reads the installed Xcode version.
package xcodebuild

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/farcloser/xcresults/internal/integration/binary"
)

const (
	name          = "xcodebuild"
	versionPrefix = "Xcode "

	// legacyMajor is the first Xcode whose xcresulttool needs --legacy for the format we read.
	legacyMajor = 16
)

var errUnexpectedOutput = errors.New("unexpected xcodebuild -version output")

// Version runs xcodebuild -version.
func Version(ctx context.Context) (semver.Version, error) {
	output, err := binary.Run(ctx, 0, name, "-version")
	if err != nil {
		return semver.Version{}, err
	}

	return ParseVersion(output)
}

// ParseVersion reads the first line of xcodebuild -version, e.g. "Xcode 16.2".
func ParseVersion(output []byte) (semver.Version, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	if !scanner.Scan() {
		return semver.Version{}, errUnexpectedOutput
	}

	line := strings.TrimSpace(scanner.Text())
	if !strings.HasPrefix(line, versionPrefix) {
		return semver.Version{}, fmt.Errorf("%w: %q", errUnexpectedOutput, line)
	}

	version, err := semver.ParseTolerant(strings.TrimSpace(strings.TrimPrefix(line, versionPrefix)))
	if err != nil {
		return semver.Version{}, fmt.Errorf("%w: %w", errUnexpectedOutput, err)
	}

	return version, nil
}

// LegacyRequired reports whether xcresulttool of that Xcode must be called with --legacy.
func LegacyRequired(version semver.Version) bool {
	return version.Major >= legacyMajor
}

// DetectLegacy resolves the legacy flag from the installed Xcode. Any failure means no legacy mode.
func DetectLegacy(ctx context.Context) bool {
	version, err := Version(ctx)
	if err != nil {
		slog.Debug("xcodebuild.DetectLegacy", "error", err)

		return false
	}

	slog.Debug("xcodebuild.DetectLegacy", "version", version.String())

	return LegacyRequired(version)
}
