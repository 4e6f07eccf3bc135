package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

func sizeSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"width":  prop("integer", "Width in pixels"),
			"height": prop("integer", "Height in pixels"),
		},
		"required": []string{"width", "height"},
	}
}

func rectSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      prop("integer", "Left edge X coordinate (0-based)"),
			"y":      prop("integer", "Top edge Y coordinate (0-based)"),
			"width":  prop("integer", "Width in pixels"),
			"height": prop("integer", "Height in pixels"),
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

const sourceDescription = "Image source: an absolute file path or a data:image/...;base64 URL"

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Geometry
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, reduced aspect ratio and a new editor record with the default centered crop.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  prop("string", "Absolute path to the image file"),
					"title": prop("string", "Title for the editor record (default: file name without extension)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_aspect_ratio",
			Description: "Reduce width and height by their greatest common divisor (1920x1080 -> 16:9).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":  prop("integer", "Width in pixels (> 0)"),
					"height": prop("integer", "Height in pixels (> 0)"),
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "image_default_crop",
			Description: "Compute the centered default crop covering a fraction of each image dimension.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":  prop("integer", "Image width in pixels"),
					"height": prop("integer", "Image height in pixels"),
					"ratio":  prop("number", "Fraction of each dimension kept, 0 < ratio <= 1 (default: configured crop ratio)"),
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "image_reconcile_crop",
			Description: "Tighten a crop so its aspect ratio matches a target size or bucket preset. Only the over-long side shrinks; the origin never moves.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"crop":   rectSchema("Crop rectangle in source pixels"),
					"target": sizeSchema("Output size"),
					"bucket": prop("integer", "Index of a bucket preset, used when target is omitted"),
				},
				"required": []string{"crop"},
			},
		},

		// Engines
		{
			Name:        "image_apply",
			Description: "Crop, resize and optionally sharpen an image. Returns a data URL (base64) or the raw encoded bytes (blob).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source":           prop("string", sourceDescription),
					"crop":             rectSchema("Crop rectangle in source pixels, reconciled to the target ratio"),
					"target":           sizeSchema("Output size"),
					"bucket":           prop("integer", "Index of a bucket preset, used when target is omitted"),
					"quality":          enumProp("Resize interpolation quality (default: configured quality)", "low", "medium", "high"),
					"response_type":    enumProp("Output form (default: base64)", "base64", "blob"),
					"sharpen_radius":   prop("number", "Unsharp-mask blur radius in pixels (0 disables sharpening)"),
					"sharpen_strength": prop("number", "Unsharp-mask strength (0 disables sharpening)"),
				},
				"required": []string{"source", "crop"},
			},
		},
		{
			Name:        "image_sharpen",
			Description: "Apply an unsharp mask: out = original + strength * (original - blurred). Alpha is preserved.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source":   prop("string", sourceDescription),
					"radius":   prop("number", "Blur radius in pixels (default: configured radius)"),
					"strength": prop("number", "Sharpening strength, 0 returns the image unchanged (default: configured strength)"),
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "image_crop_preview",
			Description: "Draw the reconciled crop rectangle and rule-of-thirds guides over the image. Returns a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": prop("string", sourceDescription),
					"crop":   rectSchema("Crop rectangle in source pixels"),
					"target": sizeSchema("Output size"),
					"bucket": prop("integer", "Index of a bucket preset, used when target is omitted"),
					"color":  prop("string", "Outline color as hex, e.g. #FF0000 (default: yellow)"),
				},
				"required": []string{"source", "crop"},
			},
		},
		{
			Name:        "image_compare",
			Description: "Compare two images pixel by pixel. Reports differing pixels, max channel difference and mean perceptual (L*a*b*) distance. Images of different size are compared over their overlapping area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source_a": prop("string", sourceDescription),
					"source_b": prop("string", sourceDescription),
				},
				"required": []string{"source_a", "source_b"},
			},
		},

		// Export records
		{
			Name:        "image_export",
			Description: "Serialize an editor record as an export record. Version 1 holds crop geometry and bucket; version 2 adds resize quality and sharpness.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "object",
						"description": "Editor record as returned by image_load or image_import",
					},
					"version": prop("integer", "Record version, 1 or 2 (default: 2)"),
				},
				"required": []string{"image"},
			},
		},
		{
			Name:        "image_import",
			Description: "Read a version 1 or version 2 export record back into an editor record. Missing version 2 fields take their defaults.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data":  prop("object", "Export record, inline or as a JSON string"),
					"src":   prop("string", "Image source for the editor record"),
					"title": prop("string", "Title for the editor record"),
				},
				"required": []string{"data"},
			},
		},
	}
}
