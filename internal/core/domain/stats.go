package domain

import "time"

type ContextStats struct {
	TotalItems         int            `json:"total_items"`
	ActiveItems        int            `json:"active_items"`
	ContentTypes       map[string]int `json:"content_types"`
	ProjectsCount      int            `json:"projects_count"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	LastUpdated        time.Time      `json:"last_updated"`
}

// ItemCounts is the aggregate read by the item repository for stats.
type ItemCounts struct {
	Total        int
	Active       int
	ContentTypes map[string]int
}

type DatabaseInfo struct {
	Backend            string `json:"backend"`
	VectorBackend      string `json:"vector_backend"`
	VectorCollection   string `json:"vector_collection"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	ItemsCount         int    `json:"items_count"`
	ActiveItemsCount   int    `json:"active_items_count"`
	ProjectsCount      int    `json:"projects_count"`
}
