package model

// Source is the wire-level tag telling the client where an answer came from.
type Source string

const (
	SourceKnowledgeBase Source = "knowledge_base"
	SourceRemote        Source = "remote"
)

// ChatRecord is one persisted question/answer interaction.
type ChatRecord struct {
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	MatchedQuestion string `json:"matched_question"` // Empty unless answered from the knowledge base
	Source          Source `json:"source"`
}
