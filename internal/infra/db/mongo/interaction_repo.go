package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
)

const collectionName = "ai_interactions"

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx2, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx2, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// document is the stored shape of an interaction.
type document struct {
	ID         string    `bson:"_id"`
	TenantID   string    `bson:"tenant_id"`
	Operation  string    `bson:"operation"`
	Success    bool      `bson:"success"`
	Error      string    `bson:"error,omitempty"`
	Source     string    `bson:"source,omitempty"`
	Input      string    `bson:"input"`
	Result     string    `bson:"result_json"`
	ImageURL   string    `bson:"image_url,omitempty"`
	DurationMS int64     `bson:"duration_ms"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toDocument(in *domain.Interaction) document {
	return document{
		ID:         string(in.ID),
		TenantID:   in.TenantID,
		Operation:  string(in.Operation),
		Success:    in.Success,
		Error:      in.Error,
		Source:     in.Source,
		Input:      in.Input,
		Result:     in.Result,
		ImageURL:   in.ImageURL,
		DurationMS: in.DurationMS,
		CreatedAt:  in.CreatedAt,
	}
}

func (d document) toDomain() *domain.Interaction {
	return &domain.Interaction{
		ID:         domain.ID(d.ID),
		TenantID:   d.TenantID,
		Operation:  domain.Operation(d.Operation),
		Success:    d.Success,
		Error:      d.Error,
		Source:     d.Source,
		Input:      d.Input,
		Result:     d.Result,
		ImageURL:   d.ImageURL,
		DurationMS: d.DurationMS,
		CreatedAt:  d.CreatedAt,
	}
}

type InteractionRepository struct {
	coll *mongo.Collection
}

func NewInteractionRepository(db *mongo.Database) *InteractionRepository {
	return &InteractionRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the tenant/created_at index used by Paginate.
func (r *InteractionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// Save upserts an interaction by id
func (r *InteractionRepository) Save(ctx context.Context, in *domain.Interaction) error {
	doc := toDocument(in)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Paginate returns a page of interactions ordered by created_at desc
func (r *InteractionRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Interaction, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, bson.M{"tenant_id": tenant}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Interaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
