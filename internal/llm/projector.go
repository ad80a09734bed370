package llm

import "strings"

// geminiTypeNames maps JSON-Schema primitive type names to the uppercase
// enum names the Gemini function-declaration schema requires. Anything
// unrecognized falls back to STRING.
var geminiTypeNames = map[string]string{
	"number":  "NUMBER",
	"integer": "INTEGER",
	"boolean": "BOOLEAN",
	"array":   "ARRAY",
	"object":  "OBJECT",
	"string":  "STRING",
}

// projectGeminiType resolves one primitive type name.
func projectGeminiType(name string) string {
	if mapped, ok := geminiTypeNames[strings.ToLower(name)]; ok {
		return mapped
	}
	return "STRING"
}

// projectGeminiTools converts the provider-agnostic tool catalog into
// Gemini function declarations. Only the portions of the input schema the
// declaration format understands are carried over: per-property type and
// description, plus the required list.
func projectGeminiTools(tools []ToolDef) []geminiFuncDecl {
	decls := make([]geminiFuncDecl, 0, len(tools))
	for _, td := range tools {
		decl := geminiFuncDecl{
			Name:        td.Name,
			Description: td.Description,
			Parameters: geminiSchema{
				Type:       "OBJECT",
				Properties: map[string]geminiProperty{},
				Required:   []string{},
			},
		}

		if props, ok := td.InputSchema["properties"].(map[string]any); ok {
			for name, raw := range props {
				details, _ := raw.(map[string]any)
				typeName, _ := details["type"].(string)
				prop := geminiProperty{Type: projectGeminiType(typeName)}
				if desc, ok := details["description"].(string); ok {
					prop.Description = desc
				}
				decl.Parameters.Properties[name] = prop
			}
		}
		if req, ok := td.InputSchema["required"].([]any); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					decl.Parameters.Required = append(decl.Parameters.Required, s)
				}
			}
		}

		decls = append(decls, decl)
	}
	return decls
}
