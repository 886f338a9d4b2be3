package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/context-store/internal/core/domain"
)

const (
	maxToolLimit       = 50
	defaultSearchLimit = 10
	defaultListLimit   = 20
	searchPreviewRune  = 500
)

func (s *Server) handleStoreContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := domain.ItemDraft{
		Title:         request.GetString("title", ""),
		Content:       request.GetString("content", ""),
		ContentType:   request.GetString("content_type", domain.ContentTypeText),
		Tags:          request.GetStringSlice("tags", nil),
		ProjectID:     request.GetString("project_id", ""),
		ExtraMetadata: objectArg(request, "extra_metadata"),
		Source:        "mcp_client",
	}
	item, err := s.services.Items.Create(ctx, draft)
	if err != nil {
		return s.failure("store_context", "Failed to store context", err), nil
	}
	return success("Context stored successfully", map[string]any{
		"id":         item.ID,
		"title":      item.Title,
		"created_at": item.CreatedAt.Format(time.RFC3339),
	}), nil
}

func (s *Server) handleRetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("context_id", 0))
	item, err := s.services.Items.Get(ctx, id)
	if err != nil {
		return s.failure("retrieve_context", fmt.Sprintf("No context found with ID %d", id), err), nil
	}
	return success("", item), nil
}

func (s *Server) handleSearchContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(request.GetInt("limit", defaultSearchLimit), defaultSearchLimit)
	weight := request.GetFloat("semantic_weight", domain.DefaultSemanticWeight)
	query := domain.SearchQuery{
		Query:      request.GetString("query", ""),
		SearchType: domain.SearchType(request.GetString("search_type", string(domain.SearchHybrid))),
		Filters: domain.SearchFilters{
			ContentTypes: request.GetStringSlice("content_types", nil),
			Tags:         request.GetStringSlice("tags", nil),
			ProjectID:    request.GetString("project_id", ""),
		},
		Limit:          limit,
		SemanticWeight: &weight,
	}

	result, err := s.services.Search.Search(ctx, query)
	if err != nil {
		return s.failure("search_context", "Failed to search context", err), nil
	}

	results := make([]map[string]any, 0, len(result.Items))
	for _, item := range result.Items {
		entry := map[string]any{
			"id":           item.ID,
			"title":        item.Title,
			"content":      preview(item.Content),
			"content_type": item.ContentType,
			"tags":         item.Tags,
			"project_id":   item.ProjectID,
			"created_at":   item.CreatedAt.Format(time.RFC3339),
		}
		if item.CombinedScore != nil {
			entry["combined_score"] = *item.CombinedScore
		}
		results = append(results, entry)
	}
	return success("", map[string]any{
		"results":     results,
		"total":       result.Total,
		"query":       result.Query,
		"search_type": result.SearchType,
		"limit":       limit,
		"degraded":    result.Degraded,
	}), nil
}

func (s *Server) handleListContexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(request.GetInt("limit", defaultListLimit), defaultListLimit)
	offset := request.GetInt("offset", 0)
	items, err := s.services.Items.List(ctx, domain.ItemListFilter{
		ProjectID:   request.GetString("project_id", ""),
		ContentType: request.GetString("content_type", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return s.failure("list_contexts", "Failed to list contexts", err), nil
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"id":           item.ID,
			"title":        item.Title,
			"content_type": item.ContentType,
			"tags":         item.Tags,
			"project_id":   item.ProjectID,
			"created_at":   item.CreatedAt.Format(time.RFC3339),
		})
	}
	return success("", map[string]any{
		"items":  out,
		"count":  len(out),
		"offset": offset,
		"limit":  limit,
	}), nil
}

func (s *Server) handleDeleteContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("context_id", 0))
	if err := s.services.Items.Delete(ctx, id, false); err != nil {
		return s.failure("delete_context", fmt.Sprintf("No context found with ID %d", id), err), nil
	}
	return success(fmt.Sprintf("Context %d deleted successfully", id), nil), nil
}

func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := s.services.Projects.Create(ctx, domain.ProjectDraft{
		ID:          request.GetString("id", ""),
		Name:        request.GetString("name", ""),
		Description: request.GetString("description", ""),
		Settings:    objectArg(request, "settings"),
	})
	if err != nil {
		return s.failure("create_project", "Failed to create project", err), nil
	}
	return success("Project created successfully", map[string]any{
		"id":         project.ID,
		"name":       project.Name,
		"created_at": project.CreatedAt.Format(time.RFC3339),
	}), nil
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(request.GetInt("limit", defaultListLimit), defaultListLimit)
	offset := request.GetInt("offset", 0)
	projects, err := s.services.Projects.List(ctx, domain.Page{Limit: limit, Offset: offset})
	if err != nil {
		return s.failure("list_projects", "Failed to list projects", err), nil
	}

	out := make([]map[string]any, 0, len(projects))
	for _, project := range projects {
		out = append(out, map[string]any{
			"id":          project.ID,
			"name":        project.Name,
			"description": project.Description,
			"created_at":  project.CreatedAt.Format(time.RFC3339),
		})
	}
	return success("", map[string]any{
		"projects": out,
		"count":    len(out),
		"offset":   offset,
		"limit":    limit,
	}), nil
}

func (s *Server) handleContextStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.services.Stats.Stats(ctx, request.GetString("project_id", ""))
	if err != nil {
		return s.failure("context_stats", "Failed to read statistics", err), nil
	}
	return success("", stats), nil
}

func (s *Server) readItemsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	items, err := s.services.Items.List(ctx, domain.ItemListFilter{Limit: domain.MaxListLimit})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return jsonResource(request.Params.URI, items), nil
}

func (s *Server) readProjectsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := s.services.Projects.List(ctx, domain.Page{Limit: domain.MaxListLimit})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return jsonResource(request.Params.URI, projects), nil
}

func success(message string, data any) *mcp.CallToolResult {
	payload := map[string]any{"success": true}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	return mcp.NewToolResultText(formatJSON(payload))
}

func (s *Server) failure(tool, message string, err error) *mcp.CallToolResult {
	s.logger.Warn("mcp_tool_failed", "tool", tool, "error", err)
	reason := err.Error()
	if domain.IsKind(err, domain.ErrItemNotFound) {
		reason = "Context not found"
	}
	return mcp.NewToolResultError(formatJSON(map[string]any{
		"success": false,
		"error":   reason,
		"message": message,
	}))
}

func jsonResource(uri string, v any) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     formatJSON(v),
		},
	}
}

func formatJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error())
	}
	return string(raw)
}

func objectArg(request mcp.CallToolRequest, key string) map[string]any {
	if m, ok := request.GetArguments()[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxToolLimit {
		return maxToolLimit
	}
	return limit
}

// preview shortens content to searchPreviewRune runes followed by "...".
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= searchPreviewRune {
		return content
	}
	return string(runes[:searchPreviewRune]) + "..."
}
