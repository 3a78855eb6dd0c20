//go:build integration
// +build integration

package snapshot

/*
	Run with: go test -tags=integration -v ./internal/snapshot -run TestSnapshotStore_Integration -count=1
*/

import (
	"context"
	"testing"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/leadhawk/prospect-sync/internal/db"
	"github.com/leadhawk/prospect-sync/internal/models"
)

// Exercises Save -> Load -> overwrite -> Delete against a real Mongo.
func TestSnapshotStore_Integration_SaveLoadOverwriteDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mongoC, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:7"))
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(ctx) })

	uri, err := mongoC.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("conn string: %v", err)
	}

	client, err := db.NewMongoClient(uri)
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	store := NewStore(client.Database("testdb"))

	// missing snapshot loads empty, not an error
	got, err := store.Load(ctx, "emp-1")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("missing snapshot: %#v", got)
	}

	companies := []models.Company{
		{ID: "c1", Name: "Acme", Status: models.StatusContacted, CreatorID: "emp-1"},
		{ID: "c2", Name: "Globex", Status: models.StatusNew, CreatorID: "emp-1",
			Responses: []models.Response{{ID: "r1", Subject: "re: intro"}}},
	}
	if err := store.Save(ctx, "emp-1", companies); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = store.Load(ctx, "emp-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Acme" || len(got[1].Responses) != 1 {
		t.Fatalf("load mismatch: %#v", got)
	}

	// second save replaces in full
	if err := store.Save(ctx, "emp-1", companies[:1]); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = store.Load(ctx, "emp-1")
	if err != nil || len(got) != 1 {
		t.Fatalf("after overwrite: %#v err=%v", got, err)
	}

	// snapshots are per actor
	got, err = store.Load(ctx, "emp-2")
	if err != nil || len(got) != 0 {
		t.Fatalf("other actor: %#v err=%v", got, err)
	}

	if err := store.Delete(ctx, "emp-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = store.Load(ctx, "emp-1")
	if err != nil || len(got) != 0 {
		t.Fatalf("after delete: %#v err=%v", got, err)
	}
}
