package reference

import (
	"bytes"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var indented = jsoniter.Config{
	EscapeHTML:    true,
	SortMapKeys:   true,
	IndentionStep: 2,
}.Froze()

// Encode writes the table as 2-space indented JSON with categories in
// Categories order.
func (t Table) Encode(w io.Writer) error {
	stream := indented.BorrowStream(w)
	defer indented.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, c := range t.Categories() {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(c)
		stream.WriteVal(t[c])
	}
	stream.WriteObjectEnd()
	stream.WriteRaw("\n")

	if stream.Error != nil {
		return fmt.Errorf("encoding reference table: %w", stream.Error)
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("writing reference table: %w", err)
	}
	return nil
}

// Decode reads a table written by Encode.
func Decode(r io.Reader) (Table, error) {
	var t Table
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding reference table: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// SaveJSON writes the table to path.
func SaveJSON(path string, t Table) error {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a table from path.
func LoadJSON(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
