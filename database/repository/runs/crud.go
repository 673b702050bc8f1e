package runsRepo

import (
	"context"
	"time"

	"courtpilot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Archive upserts a terminal run keyed by its run ID. Re-archiving the same
// run replaces the previous document.
func (r *mongoRunRepo) Archive(ctx context.Context, run models.BookingRun) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"runId": run.RunID}, run, opts)
	return err
}

// GetByID returns an archived run by its run ID.
func (r *mongoRunRepo) GetByID(ctx context.Context, runID string) (*models.BookingRun, error) {
	var run models.BookingRun
	err := r.coll.FindOne(ctx, bson.M{"runId": runID}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns the newest archived runs, most recent first.
func (r *mongoRunRepo) Recent(ctx context.Context, limit int64) ([]models.BookingRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.BookingRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListByDate fetches all runs whose parsed request targeted the given date.
func (r *mongoRunRepo) ListByDate(ctx context.Context, date string) ([]models.BookingRun, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"request.date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.BookingRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListOlderThan returns archived runs created before the cutoff. The
// retention job uses this to clean up per-run artifacts before deleting.
func (r *mongoRunRepo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.BookingRun, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.BookingRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteOlderThan removes archived runs created before the cutoff and reports
// how many were dropped. The retention job calls this.
func (r *mongoRunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
