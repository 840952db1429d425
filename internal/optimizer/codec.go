package optimizer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Codec re-encodes one image. The result must fit in maxDim x maxDim,
// never be upscaled and keep its aspect ratio.
type Codec interface {
	Encode(ctx context.Context, src, dst string, maxDim, quality int) error
}

// CodecError reports a failed encode of a single file.
type CodecError struct {
	File   string
	Output string
	Err    error
}

func (e *CodecError) Error() string {
	msg := fmt.Sprintf("encode %s: %v", e.File, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CodecError) Unwrap() error { return e.Err }

// FFmpegCodec encodes to WebP through the ffmpeg binary (libwebp).
type FFmpegCodec struct {
	path string
}

func NewFFmpegCodec(path string) *FFmpegCodec {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegCodec{path: path}
}

// IsAvailable reports whether the binary can be executed.
func (c *FFmpegCodec) IsAvailable() bool {
	return exec.Command(c.path, "-version").Run() == nil
}

func (c *FFmpegCodec) Encode(ctx context.Context, src, dst string, maxDim, quality int) error {
	cmd := exec.CommandContext(ctx, c.path, c.args(src, dst, maxDim, quality)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &CodecError{File: src, Output: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}

func (c *FFmpegCodec) args(src, dst string, maxDim, quality int) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", src,
		"-vf", scaleFilter(maxDim),
		"-c:v", "libwebp",
		"-q:v", strconv.Itoa(quality),
		dst,
	}
}

// scaleFilter caps both edges at n; min() keeps smaller images untouched.
func scaleFilter(n int) string {
	return fmt.Sprintf("scale=w='min(%d,iw)':h='min(%d,ih)':force_original_aspect_ratio=decrease", n, n)
}
