package request_models

// KnowledgeQueryRequest is the body of the knowledge-base query endpoint.
// TopK <= 0 uses the service default.
type KnowledgeQueryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}
