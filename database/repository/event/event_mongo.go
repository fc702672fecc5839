package eventRepo

import (
	"context"
	"fmt"
	"time"

	"bookline/database"
	"bookline/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	dbName         = "bookline"
	collectionName = "calendar_events"
)

// MongoEventRepo is the MongoDB-backed event repository.
type MongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo returns a repository bound to the calendar_events collection.
func NewMongoEventRepo() *MongoEventRepo {
	return &MongoEventRepo{
		coll: database.MongoClient.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the indexes the repository queries rely on.
func (r *MongoEventRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}
	return nil
}

// FetchEvents returns every event overlapping [from, to).
func (r *MongoEventRepo) FetchEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"start": bson.M{"$lt": to},
		"end":   bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.CalendarEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// CreateEvent persists a new event and returns its id.
func (r *MongoEventRepo) CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Status == "" {
		event.Status = models.EventConfirmed
	}
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return event.ID, nil
}

// UpdateEventStatus changes an event's status. Cancellation goes through
// here; events are never removed.
func (r *MongoEventRepo) UpdateEventStatus(ctx context.Context, eventID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": eventID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}
