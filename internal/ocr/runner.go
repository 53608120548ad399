package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

const (
	// maxStderr bounds how much diagnostic output of a failed command is kept
	maxStderr = 4 << 10
	// waitDelay is how long output pipes may stay open after the command
	// was killed, e.g. held by a grandchild.
	waitDelay = time.Second
)

// Runner executes an external command. Tesseract goes through it so tests
// can replace pdftoppm and tesseract.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type commandRunner struct{}

// Run starts the command and waits for it. The command is killed when ctx
// is done. Only the first maxStderr bytes of stderr are returned.
func (commandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout bytes.Buffer
	stderr := &cappedBuffer{limit: maxStderr}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// cappedBuffer keeps the first limit bytes written to it and discards the
// rest without failing the writer.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte {
	return c.buf.Bytes()
}
