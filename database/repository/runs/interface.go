package runsRepo

import (
	"context"
	"time"

	"courtpilot/database"
	"courtpilot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// RunHistoryRepository archives terminal booking runs for audit and history
// queries. Live run state lives in Redis; this is the durable record.
type RunHistoryRepository interface {
	Archive(ctx context.Context, run models.BookingRun) error
	GetByID(ctx context.Context, runID string) (*models.BookingRun, error)
	Recent(ctx context.Context, limit int64) ([]models.BookingRun, error)
	ListByDate(ctx context.Context, date string) ([]models.BookingRun, error)
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.BookingRun, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type mongoRunRepo struct {
	coll *mongo.Collection
}

// NewMongoRunRepo returns a new RunHistoryRepository instance using MongoDB.
func NewMongoRunRepo() RunHistoryRepository {
	db := database.MongoClient.Database("courtpilot")
	return &mongoRunRepo{
		coll: db.Collection("booking_runs"),
	}
}
