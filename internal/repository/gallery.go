package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/expressionlab/moodmirror/internal/domain"
)

type GalleryRepository struct {
	pool PgxPool
}

func NewGalleryRepository(pool PgxPool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

// Create inserts a gallery image with its identity embedding
func (r *GalleryRepository) Create(ctx context.Context, image *domain.GalleryImage) error {
	query := `
		INSERT INTO gallery_images (id, image_url, storage_path, embedding, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}

	var embedding *pgvector.Vector
	if len(image.Embedding) > 0 {
		vec := pgvector.NewVector(image.Embedding)
		embedding = &vec
	}

	err := r.pool.QueryRow(ctx, query,
		image.ID,
		image.ImageURL,
		image.StoragePath,
		embedding,
	).Scan(&image.CreatedAt)

	if err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}

	return nil
}

// SearchByEmbedding returns gallery images whose cosine similarity to the
// probe embedding is at or above threshold, most similar first. The <=>
// operator is cosine distance, so similarity is 1 - distance and the ORDER BY
// rides the ivfflat index.
func (r *GalleryRepository) SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.MatchCandidate, error) {
	query := `
		SELECT id, image_url, storage_path, 1 - (embedding <=> $1) AS similarity
		FROM gallery_images
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx, query, vec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("search gallery by embedding: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.MatchCandidate, 0)
	for rows.Next() {
		var (
			id          uuid.UUID
			imageURL    string
			storagePath string
			similarity  float64
		)
		if err := rows.Scan(&id, &imageURL, &storagePath, &similarity); err != nil {
			return nil, fmt.Errorf("scan gallery match: %w", err)
		}
		matches = append(matches, domain.MatchCandidate{
			ImageID:     id.String(),
			ImageURL:    imageURL,
			StoragePath: storagePath,
			Similarity:  similarity,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search gallery by embedding: %w", err)
	}

	return matches, nil
}
