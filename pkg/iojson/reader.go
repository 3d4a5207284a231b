package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrTerminal is returned by Reader.Read when input would come from an
// interactive terminal.
var ErrTerminal = errors.New("no input: stdin is a terminal, pass --file or pipe JSON")

// Reader decodes a single JSON document of type T from the file named by its
// --file flag, or from stdin when the flag is empty or "-".
type Reader[T any] struct {
	path string

	// Stdin defaults to os.Stdin.
	Stdin io.Reader
}

// Flag returns the --file flag bound to the reader.
func (r *Reader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read JSON input from `PATH` (- or unset reads stdin)",
		Destination: &r.path,
	}
}

// Read decodes the input. Anything after the first document is an error.
func (r *Reader[T]) Read() (T, error) {
	var out T

	src, closeFn, err := r.open()
	if err != nil {
		return out, err
	}
	defer closeFn()

	dec := json.NewDecoder(src)
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return out, errors.New("decode JSON: unexpected data after the first value")
	}
	return out, nil
}

func (r *Reader[T]) open() (io.Reader, func(), error) {
	if r.path != "" && r.path != "-" {
		f, err := os.Open(r.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if r.Stdin != nil {
		return r.Stdin, func() {}, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil, ErrTerminal
	}
	return os.Stdin, func() {}, nil
}
