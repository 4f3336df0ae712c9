package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatJSONC = "jsonc"
	formatYAML  = "yaml"
	formatCBOR  = "cbor"
)

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decode mode: %v", err))
	}
}

// detectFormat returns explicit when set, otherwise guesses from the file
// extension. Stdin and unknown extensions default to JSON.
func detectFormat(path, explicit string) (string, error) {
	if explicit != "" {
		switch f := strings.ToLower(explicit); f {
		case formatJSON, formatJSONC, formatYAML, formatCBOR:
			return f, nil
		case "yml":
			return formatYAML, nil
		default:
			return "", fmt.Errorf("unknown format %q", explicit)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc":
		return formatJSONC, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".cbor":
		return formatCBOR, nil
	default:
		return formatJSON, nil
	}
}

func readInput(path, explicit string, stdin io.Reader) (any, error) {
	format, err := detectFormat(path, explicit)
	if err != nil {
		return nil, err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return readDocument(data, format)
}

// readDocument parses data in the given format into plain Go values that
// the codec can encode dynamically.
func readDocument(data []byte, format string) (any, error) {
	var doc any

	switch format {
	case formatJSON, formatJSONC:
		if format == formatJSONC {
			data = jsonc.ToJSON(data)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", format, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case formatCBOR:
		if err := cborDecMode.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse cbor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return normalize(doc)
}

// normalize rewrites parser-specific values into the types the dynamic
// encoder understands.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return jsonNumber(x)
	case map[string]any:
		for k, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case cbor.Tag:
		return normalize(x.Content)
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case int:
		return int64(x), nil
	default:
		return v, nil
	}
}

func jsonNumber(n json.Number) (any, error) {
	s := n.String()
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if !strings.ContainsAny(s, ".eE-") {
		var u uint64
		if _, err := fmt.Sscan(s, &u); err == nil {
			return u, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %q: %w", s, err)
	}
	return f, nil
}
