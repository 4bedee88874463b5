package domain

// SearchResult is one ranked hit from a collection query. Distance is a
// non-negative dissimilarity score, smaller is more relevant; exact-match
// hits carry distance 0 to force top ranking. Area names the collection the
// hit came from, "" for the global collection.
type SearchResult struct {
	Text     string
	Meta     map[string]string
	Distance float32
	Area     string
}

// SourceRef describes the origin of one chunk included in an assembled
// context, in ranking order. Sheet/Row/Page are zero-valued for formats
// that lack them.
type SourceRef struct {
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Area     string  `json:"area,omitempty"`
	Sheet    string  `json:"sheet,omitempty"`
	Row      int     `json:"row,omitempty"`
	Page     int     `json:"page,omitempty"`
	Distance float32 `json:"distance"`
	Preview  string  `json:"preview"`
}

// ContextBundle is an assembled, budget-bounded context with one SourceRef
// per included (or partially included) chunk. Never persisted.
type ContextBundle struct {
	Context string
	Sources []SourceRef
}

// Answer is the assistant's reply to one question. Area is the area the
// answer was drawn from (caller-supplied or detected from the top hit),
// AreasSearched the collections actually queried.
type Answer struct {
	Reply         string
	Area          string
	Context       string
	Sources       []SourceRef
	AreasSearched []string
}

// Document identifies an ingested file by path and content fingerprint.
// Fingerprint is the SHA-1 hex digest of the file bytes; its 12-char prefix
// keys the document's chunk IDs.
type Document struct {
	Path        string
	Fingerprint string
}
