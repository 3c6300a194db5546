package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// AuditRepository implements ports.AuditSink on the session_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(sessionEventsCollection)}
}

// InsertSessionEvent persists one event. Events without a user omit user_id.
func (r *AuditRepository) InsertSessionEvent(ctx context.Context, event *domain.SessionEvent) error {
	doc := bson.M{
		"conn_id":      event.ConnID,
		"kind":         string(event.Kind),
		"email":        event.Email,
		"remote":       event.Remote,
		"at":           event.At.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.UserID != 0 {
		doc["user_id"] = event.UserID
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}
