package model

// KnowledgeEntry pairs a canonical question with its curated answer.
type KnowledgeEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
