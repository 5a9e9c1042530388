package rdap

import (
	"bytes"
	"encoding/json"

	gerr "github.com/pkg/errors"
)

// Encode renders a document as pretty-printed JSON with object keys in
// lexical order at every level. encoding/json already sorts map keys,
// so the document is round-tripped through untyped maps before the
// final indent pass. Number values survive via json.Number.
func Encode(v interface{}) ([]byte, error) {

	bs, err := json.Marshal(v)
	if err != nil {
		return nil, gerr.WithMessage(err, "marshal")
	}

	dec := json.NewDecoder(bytes.NewReader(bs))
	dec.UseNumber()

	var tree interface{}
	if err = dec.Decode(&tree); err != nil {
		return nil, gerr.WithMessage(err, "canonicalize")
	}

	bs, err = json.MarshalIndent(tree, "", "    ")
	if err != nil {
		return nil, gerr.WithMessage(err, "indent")
	}

	return append(bs, '\n'), nil
}
