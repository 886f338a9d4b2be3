package mcpadapter

import "github.com/mark3labs/mcp-go/mcp"

func storeContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "store_context",
		Description: "Store a new context item",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Title of the context item",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Main text of the context item",
				},
				"content_type": map[string]any{
					"type":        "string",
					"description": "Content type (text, code, markdown, json)",
					"default":     "text",
				},
				"tags": map[string]any{
					"type":        "array",
					"description": "Tags for categorization",
					"items":       map[string]any{"type": "string"},
				},
				"project_id": map[string]any{
					"type":        "string",
					"description": "Project to associate the item with",
				},
				"extra_metadata": map[string]any{
					"type":        "object",
					"description": "Additional key-value metadata",
				},
			},
			Required: []string{"title", "content"},
		},
	}
}

func retrieveContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve a context item by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"context_id": map[string]any{
					"type":        "integer",
					"description": "Id of the context item",
				},
			},
			Required: []string{"context_id"},
		},
	}
}

func searchContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_context",
		Description: "Search stored context items by meaning, keywords or both",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
				"search_type": map[string]any{
					"type":        "string",
					"description": "semantic, keyword or hybrid",
					"enum":        []string{"semantic", "keyword", "hybrid"},
					"default":     "hybrid",
				},
				"content_types": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"tags": map[string]any{
					"type":        "array",
					"description": "Items having any of these tags match",
					"items":       map[string]any{"type": "string"},
				},
				"project_id": map[string]any{
					"type": "string",
				},
				"limit": map[string]any{
					"type":    "integer",
					"default": defaultSearchLimit,
					"minimum": 1,
					"maximum": maxToolLimit,
				},
				"semantic_weight": map[string]any{
					"type":        "number",
					"description": "Weight of semantic rank in hybrid search",
					"default":     0.7,
					"minimum":     0,
					"maximum":     1,
				},
			},
			Required: []string{"query"},
		},
	}
}

func listContextsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_contexts",
		Description: "List active context items",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":   map[string]any{"type": "string"},
				"content_type": map[string]any{"type": "string"},
				"limit":        map[string]any{"type": "integer", "default": defaultListLimit, "minimum": 1, "maximum": maxToolLimit},
				"offset":       map[string]any{"type": "integer", "default": 0, "minimum": 0},
			},
		},
	}
}

func deleteContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_context",
		Description: "Delete a context item",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"context_id": map[string]any{
					"type":        "integer",
					"description": "Id of the context item",
				},
			},
			Required: []string{"context_id"},
		},
	}
}

func createProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_project",
		Description: "Create a project for organizing context items",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"id": map[string]any{
					"type":        "string",
					"description": "Optional project id; generated when omitted",
				},
				"settings": map[string]any{"type": "object"},
			},
			Required: []string{"name"},
		},
	}
}

func listProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_projects",
		Description: "List active projects",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit":  map[string]any{"type": "integer", "default": defaultListLimit, "minimum": 1, "maximum": maxToolLimit},
				"offset": map[string]any{"type": "integer", "default": 0, "minimum": 0},
			},
		},
	}
}

func contextStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "context_stats",
		Description: "Item counts by content type, optionally for one project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": map[string]any{"type": "string"},
			},
		},
	}
}
