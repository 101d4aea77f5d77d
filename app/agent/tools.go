package agent

// CreateFormTool declares the one structured capability the model may
// invoke: handing a form specification to the form-persistence service.
func CreateFormTool() Tool {
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        "create_form",
			Description: "Create and publish a form from the specification gathered during the conversation. Call this only once the user has confirmed the title and fields.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "The title of the form.",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "A short description shown above the form.",
					},
					"fields": map[string]any{
						"type":        "array",
						"description": "The ordered list of form fields.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"label": map[string]any{
									"type":        "string",
									"description": "The question or label of the field.",
								},
								"type": map[string]any{
									"type":        "string",
									"enum":        []string{"text", "textarea", "select", "checkbox", "email", "number"},
									"description": "The input type of the field.",
								},
								"required": map[string]any{
									"type":        "boolean",
									"description": "Whether the field must be filled in.",
								},
								"options": map[string]any{
									"type":        "array",
									"items":       map[string]any{"type": "string"},
									"description": "Choices for select or checkbox fields.",
								},
							},
							"required": []string{"label", "type"},
						},
					},
				},
				"required": []string{"title", "fields"},
			},
		},
	}
}
