// Package sips converts exported HEIC screenshots with the macOS sips tool.
package sips

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farcloser/xcresults/internal/integration/binary"
)

const name = "sips"

// JPEGPath is where ToJPEG writes the conversion of heicPath.
func JPEGPath(heicPath string) string {
	return strings.TrimSuffix(heicPath, filepath.Ext(heicPath)) + ".jpeg"
}

// ToJPEG converts heicPath next to itself and removes the original.
func ToJPEG(ctx context.Context, timeout time.Duration, heicPath string) (string, error) {
	jpegPath := JPEGPath(heicPath)

	slog.Debug("sips.ToJPEG", "input", heicPath, "output", jpegPath)

	if _, err := binary.Run(ctx, timeout, name, "-s", "format", "jpeg", heicPath, "--out", jpegPath); err != nil {
		return "", err
	}

	if err := os.Remove(heicPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("removing %s: %w", heicPath, err)
	}

	return jpegPath, nil
}
