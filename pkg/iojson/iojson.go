// Package iojson reads and writes the JSON that commands consume and emit.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is written to the error stream in place of a value that could not
// be encoded.
type Error struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// WriteIndented writes obj to w as indented JSON. When obj cannot be encoded
// an Error describing why is written to ew instead.
func WriteIndented(w, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		e, _ := json.Marshal(Error{Message: fmt.Sprintf("cannot encode %T as JSON", obj), Detail: err.Error()})
		_, werr := fmt.Fprintln(ew, string(e))
		return werr
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj as a single line of compact JSON, for JSON lines
// output.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal json line: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
