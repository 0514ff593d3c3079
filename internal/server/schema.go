package server

var verdictSchema = &Schema{
	Name: "verdict_request",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"key"},
		"properties": map[string]any{
			"key": map[string]any{"type": "string", "minLength": 1},
			"selectedLines": map[string]any{
				"type":  []string{"array", "null"},
				"items": map[string]any{"type": "integer"},
			},
		},
	},
}

var reviewSchema = &Schema{
	Name: "review_request",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"message"},
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
			"author":  map[string]any{"type": "string"},
		},
	},
}
