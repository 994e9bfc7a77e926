package domain

// Embeddable defines the interface for entities that carry a semantic vector.
// This abstraction lets documents and project anchors share similarity helpers.
type Embeddable interface {
	// GetID returns the unique identifier for this entity.
	GetID() string

	// GetEmbedding returns the mean embedding, or nil when none is available.
	GetEmbedding() []float32
}

// GetID returns the document ID.
func (d *Document) GetID() string {
	return d.ID
}

// GetEmbedding returns the document's mean embedding. Chunk embeddings are
// averaged during feature resolution, not here.
func (d *Document) GetEmbedding() []float32 {
	return d.Embedding
}

// HasEmbedding reports whether a mean or any chunk embedding is available.
func (d *Document) HasEmbedding() bool {
	if len(d.Embedding) > 0 {
		return true
	}

	for _, c := range d.ChunkEmbeddings {
		if len(c) > 0 {
			return true
		}
	}

	return false
}

// Anchor is the mean embedding of an existing project.
type Anchor struct {
	ProjectID string
	Vector    []float32
}

// GetID returns the project ID.
func (a *Anchor) GetID() string {
	return a.ProjectID
}

// GetEmbedding returns the anchor vector.
func (a *Anchor) GetEmbedding() []float32 {
	return a.Vector
}

var (
	_ Embeddable = (*Document)(nil)
	_ Embeddable = (*Anchor)(nil)
)
