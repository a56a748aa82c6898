package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"promptops/internal/models"
)

// PromptIndex is the optional similarity index over migration prompts.
// Configured only when both Qdrant and Gemini are available; a nil index
// disables the feature.
type PromptIndex interface {
	InitCollection() error
	IndexPrompts(ctx context.Context, migration *models.Migration) error
	RemoveMigration(ctx context.Context, migrationID string) error
	SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarPrompt, error)
}

type promptIndex struct {
	client         *qdrant.Client
	gemini         GeminiService
	collectionName string
	vectorSize     uint64
}

func NewPromptIndex(urlStr, apiKey, collectionName string, gemini GeminiService) (PromptIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &promptIndex{
		client:         client,
		gemini:         gemini,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements PromptIndex.
func (q *promptIndex) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Prompt index collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Prompt index collection '%s' created successfully\n", q.collectionName)
	return nil
}

// IndexPrompts implements PromptIndex.
func (q *promptIndex) IndexPrompts(ctx context.Context, migration *models.Migration) error {
	points := make([]*qdrant.PointStruct, 0, len(migration.Prompts))
	for _, p := range migration.Prompts {
		embedding, err := q.gemini.GenerateEmbedding(ctx, p.Source)
		if err != nil {
			return fmt.Errorf("failed to embed prompt %s: %w", p.ID, err)
		}

		pointID := uuid.New()
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(pointID.ID())),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"migration_id": migration.ID,
				"prompt_id":    p.ID,
				"text":         p.Source,
			}),
		})
	}

	if len(points) == 0 {
		return nil
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// RemoveMigration implements PromptIndex.
func (q *promptIndex) RemoveMigration(ctx context.Context, migrationID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("migration_id", migrationID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete migration prompts: %w", err)
	}

	return nil
}

// SearchSimilar implements PromptIndex.
func (q *promptIndex) SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarPrompt, error) {
	embedding, err := q.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.SimilarPrompt, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload

		result := models.SimilarPrompt{
			Score: point.Score,
		}

		if v, ok := payload["migration_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				result.MigrationID = val.StringValue
			}
		}
		if v, ok := payload["prompt_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				result.PromptID = val.StringValue
			}
		}
		if v, ok := payload["text"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}
