// Package xcresulttool drives `xcrun xcresulttool` against one result bundle.
package xcresulttool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/xcresults/internal/integration/binary"
	"github.com/farcloser/xcresults/internal/xcjson"
)

const (
	name = "xcrun"
	tool = "xcresulttool"
)

var errEmptyOutput = errors.New("xcresulttool returned no data")

// Tool carries the settings shared by every call.
type Tool struct {
	// Legacy appends --legacy, required by Xcode 16 and later for the document format read here.
	Legacy bool
	// Timeout bounds each call. Zero means no bound.
	Timeout time.Duration
}

// Bundle is one .xcresult bundle.
type Bundle struct {
	tool Tool
	path string
}

// Open binds the tool to a bundle path. Nothing is read until a call is made.
func (t Tool) Open(bundlePath string) (*Bundle, error) {
	abs, err := filepath.Abs(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return &Bundle{tool: t, path: abs}, nil
}

// Path returns the absolute bundle path.
func (b *Bundle) Path() string {
	return b.path
}

// Root reads the top level record of the bundle.
func (b *Bundle) Root(ctx context.Context) (xcjson.Node, error) {
	return b.get(ctx, b.args("get", "--format", "json", "--path", b.path))
}

// Resolve reads the document behind a reference id.
func (b *Bundle) Resolve(ctx context.Context, id string) (xcjson.Node, error) {
	return b.get(ctx, b.args("get", "--format", "json", "--path", b.path, "--id", id))
}

// Export writes the payload behind id to outputPath.
func (b *Bundle) Export(ctx context.Context, id, outputPath string) error {
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	slog.Debug("xcresulttool.Export", "id", id, "output", abs)

	_, err = binary.Run(ctx, b.tool.Timeout, name,
		b.args("export", "--type", "file", "--path", b.path, "--id", id, "--output-path", abs)...)

	return err
}

func (b *Bundle) get(ctx context.Context, args []string) (xcjson.Node, error) {
	output, err := binary.Run(ctx, b.tool.Timeout, name, args...)
	if err != nil {
		return xcjson.Node{}, err
	}

	if len(bytes.TrimSpace(output)) == 0 {
		return xcjson.Node{}, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, errEmptyOutput)
	}

	return xcjson.Parse(output)
}

func (b *Bundle) args(sub ...string) []string {
	args := append([]string{tool}, sub...)
	if b.tool.Legacy {
		args = append(args, "--legacy")
	}

	return args
}
