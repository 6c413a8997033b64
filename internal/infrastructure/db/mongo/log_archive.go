package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
)

const (
	collectionLogEvents = "log_events"
	archiveTimeout      = 10 * time.Second
)

// LogArchive copies local log events into a MongoDB collection. Documents
// are keyed by the event's DBIndex, so re-exporting is idempotent.
type LogArchive struct {
	col   *mongo.Collection
	owner string
}

var _ ports.LogArchive = (*LogArchive)(nil)

// NewLogArchive writes to collection in db (log_events when empty),
// tagging every document with owner.
func NewLogArchive(db *mongo.Database, collection, owner string) *LogArchive {
	if collection == "" {
		collection = collectionLogEvents
	}
	return &LogArchive{col: db.Collection(collection), owner: owner}
}

// Archive upserts events and reports how many documents were inserted or
// changed.
func (a *LogArchive) Archive(ctx context.Context, events []domain.LogEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(events))
	for _, e := range events {
		doc := bson.M{
			"_id":       e.DBIndex(),
			"event_id":  e.ID,
			"owner":     a.owner,
			"message":   e.Message,
			"level":     string(e.Level),
			"timestamp": e.Timestamp.UTC(),
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc["_id"]}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	res, err := a.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("archive log events: %w", err)
	}
	return int(res.UpsertedCount + res.ModifiedCount), nil
}
