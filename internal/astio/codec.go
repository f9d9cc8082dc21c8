package astio

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"flintc/internal/ast"
	"flintc/internal/source"
)

// Format names an interchange encoding.
type Format uint8

const (
	FormatYAML Format = iota
	FormatMsgpack
)

// FormatForPath picks the encoding from a file extension.
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	}
	return FormatYAML
}

// Decode reads a module document in the given format.
func Decode(data []byte, format Format, file source.FileID) (*ast.Module, error) {
	var (
		doc ModuleDoc
		err error
	)
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("yaml")
		err = dec.Decode(&doc)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	return ToModule(&doc, file)
}

// EncodeMsgpack writes mod in the binary interchange form.
func EncodeMsgpack(mod *ast.Module) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("yaml")
	if err := enc.Encode(FromModule(mod)); err != nil {
		return nil, fmt.Errorf("encode module: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeYAML writes mod as a YAML document.
func EncodeYAML(mod *ast.Module) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromModule(mod)); err != nil {
		return nil, fmt.Errorf("encode module: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
