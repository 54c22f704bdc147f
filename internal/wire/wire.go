// Package wire reads requests and writes responses as newline-delimited
// JSON over a byte stream (normally the bridge process's stdin and stdout).
//
// Wire format:
//
//	<json>\n
package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.klb.dev/capclip/internal/message"
)

// MaxMessageSize is the largest line we will read (16 MiB), enough for an
// inline base64 image.
const MaxMessageSize = 16 * 1024 * 1024

// ErrTooLarge is returned for a line longer than MaxMessageSize. The line is
// discarded and the stream stays usable.
var ErrTooLarge = errors.New("message too large")

// Conn frames messages over r and w.
type Conn struct {
	br *bufio.Reader
	mu sync.Mutex
	w  io.Writer
}

// New wraps r and w.
func New(r io.Reader, w io.Writer) *Conn {
	return &Conn{
		br: bufio.NewReaderSize(r, 64*1024),
		w:  w,
	}
}

// WriteMsg serialises resp and writes it followed by a newline. Safe for
// concurrent use.
func (c *Conn) WriteMsg(resp *message.Response) error {
	raw, err := resp.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.w.Write(append(raw, '\n'))
	return err
}

// ReadLine reads one newline-terminated line without the newline. Blank
// lines are skipped. A final line without a newline is returned before
// io.EOF.
func (c *Conn) ReadLine() ([]byte, error) {
	for {
		var line []byte
		tooLarge := false
		for {
			chunk, isPrefix, err := c.br.ReadLine()
			if err != nil {
				if len(line) > 0 && errors.Is(err, io.EOF) {
					break
				}
				return nil, err
			}
			if !tooLarge {
				line = append(line, chunk...)
				if len(line) > MaxMessageSize {
					tooLarge = true
					line = nil
				}
			}
			if !isPrefix {
				break
			}
		}
		if tooLarge {
			return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, MaxMessageSize)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return line, nil
	}
}

// ReadMsg reads one line and deserialises it into a Request.
func (c *Conn) ReadMsg() (*message.Request, error) {
	line, err := c.ReadLine()
	if err != nil {
		return nil, err
	}
	return message.Decode(line)
}
