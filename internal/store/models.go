package store

// Chunk is one embedded segment of a source document. A full set of
// chunks written by one ingestion run forms a generation; re-ingestion
// replaces the generation wholesale.
type Chunk struct {
	ID        string    `json:"id"` // UUID, unique within a generation
	Source    string    `json:"source"`
	Page      int       `json:"page"`
	Position  int       `json:"position"` // ordinal within the source document
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"` // internal, never exposed over the API
}

// ScoredChunk pairs a chunk with its similarity to a query vector.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}
