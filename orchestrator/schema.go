package orchestrator

import (
	"encoding/json"

	"github.com/arborcode/agentcore/provider"
	"github.com/arborcode/agentcore/tool"
)

// toolDefinitionFrom converts a registered tool's Info into the schema
// shape providers want. Tools that generated a full JSON schema (via
// tool.GenerateSchema, e.g. MultiEdit) use it verbatim; everything else
// gets a schema assembled from its flat Parameter list.
func toolDefinitionFrom(info tool.Info) provider.ToolDefinition {
	def := provider.ToolDefinition{Name: info.Name, Description: info.Description}

	if info.Schema != nil {
		raw, err := json.Marshal(info.Schema)
		if err == nil {
			var m map[string]any
			if json.Unmarshal(raw, &m) == nil {
				def.InputSchema = m
				return def
			}
		}
	}

	properties := make(map[string]any, len(info.Parameters))
	var required []string
	for _, p := range info.Parameters {
		prop := map[string]any{"type": p.Type, "description": p.Description}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	def.InputSchema = map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	return def
}

func toolDefinitions(infos []tool.Info) []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(infos))
	for _, info := range infos {
		defs = append(defs, toolDefinitionFrom(info))
	}
	return defs
}
