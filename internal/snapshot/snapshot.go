// Package snapshot persists the last successfully fetched collection per
// actor, so a restarted process can show data before its first refetch
// completes. Snapshots are a warm-start cache, never a source of truth; the
// next refetch overwrites them wholesale.
package snapshot

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leadhawk/prospect-sync/internal/models"
)

type document struct {
	ActorID   string           `bson:"_id"`
	Companies []models.Company `bson:"companies"`
	SavedAt   time.Time        `bson:"saved_at"`
}

type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("snapshots")}
}

// Save upserts the actor's snapshot. One document per actor; every save
// replaces the previous one in full.
func (s *Store) Save(ctx context.Context, actorID string, companies []models.Company) error {
	doc := document{
		ActorID:   actorID,
		Companies: companies,
		SavedAt:   time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": actorID}, doc, opts)
	return err
}

// Load returns the actor's snapshot, or an empty slice when none exists.
func (s *Store) Load(ctx context.Context, actorID string) ([]models.Company, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": actorID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Company{}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Companies, nil
}

// Delete drops the actor's snapshot; used on logout.
func (s *Store) Delete(ctx context.Context, actorID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": actorID})
	return err
}
