package response_models

// KnowledgeSnippet is one similarity-search hit from the advisory corpus.
type KnowledgeSnippet struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}
