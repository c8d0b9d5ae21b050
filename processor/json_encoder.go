package processor

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Document is the output of a conversion.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Data     Grid     `json:"data"`
}

// JSONEncoder writes one Document per line.
type JSONEncoder struct {
	Out          io.Writer
	BytesWritten int64
}

func NewJSONEncoder(out io.Writer) *JSONEncoder {
	return &JSONEncoder{Out: out}
}

// Encode serializes doc completely before writing, so a failed encode
// leaves Out untouched.
func (je *JSONEncoder) Encode(doc *Document) error {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding document")
	}

	n, err := buf.WriteTo(je.Out)
	je.BytesWritten += n
	if err != nil {
		return errors.Wrap(err, "writing document")
	}
	return nil
}
