package upgrade

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

//go:embed schema/update-info.schema.json
var updateInfoSchema []byte

const updateInfoSchemaURL = "https://github.com/mchave3/Intune-Group-Assignments/schema/update-info.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(updateInfoSchema))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(updateInfoSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(updateInfoSchemaURL)
})

// DecodeUpdateInfo decodes a metadata document, validates it against the
// update-info schema and returns the mapped UpdateInfo. YAML documents are
// converted to JSON first so both formats go through the same schema.
func DecodeUpdateInfo(body []byte, isYAML bool) (*UpdateInfo, error) {
	if isYAML {
		var node yaml.Node
		if err := yaml.Unmarshal(body, &node); err != nil {
			return nil, parseError("Malformed YAML metadata", err)
		}
		keepVersionText(&node)
		var doc any
		if err := node.Decode(&doc); err != nil {
			return nil, parseError("Malformed YAML metadata", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, parseError("Unsupported YAML metadata", err)
		}
		body = converted
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, parseError("Malformed JSON metadata", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, NewError(ExitGenericError, "Update schema unavailable", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, parseError("Metadata does not match schema", err)
	}

	var info UpdateInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, parseError("Malformed metadata", err)
	}
	if err := validateInfo(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// keepVersionText retags an unquoted top-level version scalar as a string,
// so "version: 2.0" stays "2.0" instead of decoding to the float 2.
func keepVersionText(doc *yaml.Node) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if key.Value != "version" || val.Kind != yaml.ScalarNode {
			continue
		}
		if val.Tag == "!!int" || val.Tag == "!!float" {
			val.Tag = "!!str"
		}
	}
}

// validateInfo checks the fields every source must provide.
func validateInfo(info *UpdateInfo) error {
	if info == nil {
		return parseError("Empty metadata", nil)
	}
	if _, err := version.Parse(info.Version); err != nil {
		return parseError("Unparseable release version", err)
	}
	if info.DownloadURL == "" {
		return parseError("Metadata has no download URL", nil)
	}
	return nil
}
