package lsp

import (
	"io"
	"os"
)

// stdio joins a reader and a writer into the stream the server speaks over.
type stdio struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

// Stdio returns the process's standard input and output as one stream.
// Nothing else may write to stdout while it is in use.
func Stdio() io.ReadWriteCloser {
	return NewStream(os.Stdin, os.Stdout)
}

// NewStream joins r and w. Close closes whichever of them are closers.
func NewStream(r io.Reader, w io.Writer) io.ReadWriteCloser {
	s := &stdio{Reader: r, Writer: w}
	if c, ok := r.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	if c, ok := w.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return s
}

func (s *stdio) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
