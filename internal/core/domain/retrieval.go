package domain

type SearchFilter struct {
	Filename string
}

type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

type Answer struct {
	Text    string           `json:"answer"`
	Sources []RetrievedChunk `json:"sources,omitempty"`
}
