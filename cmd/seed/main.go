package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/config"
	"github.com/expressionlab/moodmirror/internal/database"
	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/face"
	"github.com/expressionlab/moodmirror/internal/provider"
	"github.com/expressionlab/moodmirror/internal/repository"
	"github.com/expressionlab/moodmirror/internal/storage"
)

// Seeds the gallery from a directory of face images: each image is aligned,
// embedded and inserted into gallery_images with its object-store location.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("dir", "", "Directory of face images to ingest (required)")
	baseURL := flag.String("base-url", "http://localhost:8000/gallery", "Public URL prefix for ingested images")
	flag.Parse()

	if *dir == "" {
		return fmt.Errorf("dir flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	pipeline, err := face.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face pipeline: %w", err)
	}

	galleryRepo := repository.NewGalleryRepository(pool)

	ingested, skipped := 0, 0
	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isImageFile(path) {
			return nil
		}

		if err := ingest(ctx, galleryRepo, store, pipeline, path, *baseURL); err != nil {
			log.Printf("skipped %s: %v", path, err)
			skipped++
			return nil
		}
		ingested++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", *dir, err)
	}

	log.Printf("✓ Ingested %d images (%d skipped)", ingested, skipped)
	return nil
}

func ingest(
	ctx context.Context,
	gallery *repository.GalleryRepository,
	store storage.ObjectStore,
	pipeline *face.Pipeline,
	path, baseURL string,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	aligned, err := pipeline.Aligner.AlignFace(ctx, data)
	if err != nil {
		if errors.Is(err, provider.ErrNoFace) {
			return fmt.Errorf("no face in image")
		}
		return fmt.Errorf("align face: %w", err)
	}

	embedding, err := pipeline.Embedder.ExtractEmbedding(ctx, aligned.Bytes)
	if err != nil {
		return fmt.Errorf("extract embedding: %w", err)
	}

	id := uuid.New()
	key := fmt.Sprintf("gallery/%s.jpg", id)
	storagePath, err := store.Save(ctx, key, data)
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	image := &domain.GalleryImage{
		ID:          id,
		ImageURL:    fmt.Sprintf("%s/%s.jpg", strings.TrimRight(baseURL, "/"), id),
		StoragePath: storagePath,
		Embedding:   embedding,
	}
	if err := gallery.Create(ctx, image); err != nil {
		return fmt.Errorf("insert gallery row: %w", err)
	}

	return nil
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageType {
	case "s3":
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
	case "local", "":
		return storage.NewLocalStore(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: local, s3)", cfg.StorageType)
	}
}
