package decode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// OverlaySpecificity ranks overlay bindings above the built-in table.
const OverlaySpecificity = 1

const overlaySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["bindings"],
  "additionalProperties": false,
  "properties": {
    "bindings": {"type": "array", "items": {"$ref": "#/definitions/binding"}}
  },
  "definitions": {
    "spec": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["int", "bit", "flag", "reduce", "vector", "zero"]},
        "start": {"type": "integer", "minimum": 0, "maximum": 64},
        "end": {"type": "integer", "minimum": 0, "maximum": 64},
        "signed": {"type": "boolean"},
        "scale": {"type": "number"},
        "raw": {"type": "boolean"},
        "bit": {"type": "integer", "minimum": 0, "maximum": 7},
        "chunk": {"enum": [1, 2, 4]},
        "reduce": {"enum": ["mean", "max", "min"]},
        "len": {"type": "integer", "minimum": 1},
        "elements": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/spec"}}
      }
    },
    "binding": {
      "allOf": [{"$ref": "#/definitions/spec"}],
      "required": ["frame_id", "path"],
      "properties": {
        "frame_id": {"type": ["integer", "string"]},
        "path": {"type": "string", "pattern": "^[a-z_]+(\\.[a-z0-9_]+)+$"},
        "index": {"type": "integer", "minimum": 0},
        "size": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var compiledOverlaySchema = jsonschema.MustCompileString("overlay.schema.json", overlaySchema)

type frameID uint32

func (f *frameID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("frame_id %q: %w", s, err)
	}
	*f = frameID(n)
	return nil
}

type specDoc struct {
	Kind     string    `json:"kind"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Signed   bool      `json:"signed"`
	Scale    *float64  `json:"scale"`
	Raw      bool      `json:"raw"`
	Bit      uint8     `json:"bit"`
	Chunk    int       `json:"chunk"`
	Reduce   string    `json:"reduce"`
	Len      int       `json:"len"`
	Elements []specDoc `json:"elements"`
}

type bindingDoc struct {
	specDoc
	FrameID frameID `json:"frame_id"`
	Path    string  `json:"path"`
	Index   int     `json:"index"`
	Size    int     `json:"size"`
}

type overlayDoc struct {
	Bindings []bindingDoc `json:"bindings"`
}

func (d specDoc) toSpec() (Spec, error) {
	kind, ok := ParseKind(d.Kind)
	if !ok {
		return Spec{}, fmt.Errorf("%w: kind %q", ErrInvalidSpec, d.Kind)
	}
	red, ok := ParseReduction(d.Reduce)
	if !ok {
		return Spec{}, fmt.Errorf("%w: reduce %q", ErrInvalidSpec, d.Reduce)
	}
	s := Spec{
		Kind:   kind,
		Start:  d.Start,
		End:    d.End,
		Signed: d.Signed,
		Scale:  1,
		Raw:    d.Raw,
		Bit:    d.Bit,
		Chunk:  d.Chunk,
		Reduce: red,
		Len:    d.Len,
	}
	if d.Scale != nil {
		s.Scale = *d.Scale
	}
	if (kind == KindBit || kind == KindFlag) && s.End == 0 {
		s.End = s.Start + 1
	}
	for i, e := range d.Elements {
		es, err := e.toSpec()
		if err != nil {
			return Spec{}, fmt.Errorf("element %d: %w", i, err)
		}
		s.Elems = append(s.Elems, es)
	}
	return s, nil
}

// LoadOverlay reads extra bindings from a YAML or JSON file. The document is
// checked against the overlay schema before any binding is built.
func LoadOverlay(path string) ([]Binding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overlay: %w", err)
	}
	return ParseOverlay(raw, strings.ToLower(filepath.Ext(path)) == ".json")
}

func ParseOverlay(raw []byte, isJSON bool) ([]Binding, error) {
	if !isJSON {
		var y any
		if err := yaml.Unmarshal(raw, &y); err != nil {
			return nil, fmt.Errorf("parse overlay yaml: %w", err)
		}
		b, err := json.Marshal(y)
		if err != nil {
			return nil, fmt.Errorf("convert overlay yaml: %w", err)
		}
		raw = b
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse overlay json: %w", err)
	}
	if err := compiledOverlaySchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("overlay schema: %w", err)
	}

	var doc overlayDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode overlay: %w", err)
	}

	out := make([]Binding, 0, len(doc.Bindings))
	for i, bd := range doc.Bindings {
		s, err := bd.toSpec()
		if err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, bd.Path, err)
		}
		out = append(out, Binding{
			FrameID:     uint32(bd.FrameID),
			Path:        bd.Path,
			Spec:        s,
			Index:       bd.Index,
			Size:        bd.Size,
			Specificity: OverlaySpecificity,
		})
	}
	return out, nil
}
