package domain

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage is one searchable face in the reference gallery. The embedding
// is extracted at ingestion time and indexed for cosine similarity.
type GalleryImage struct {
	ID          uuid.UUID `json:"id"`
	ImageURL    string    `json:"image_url"`
	StoragePath string    `json:"-"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
