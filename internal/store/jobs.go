package store

import (
	"context"
	"fmt"

	"freightmarket-api-server/internal/jobs"
	"freightmarket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertJob stores a fresh posting. The engine has already assigned the
// document id.
func (m *Mongo) InsertJob(ctx context.Context, job *models.Job) error {
	_, err := m.jobs().InsertOne(ctx, job)
	return err
}

// GetJob loads one job by its hex id.
func (m *Mongo) GetJob(ctx context.Context, id string) (*models.Job, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, jobs.ErrJobNotFound
	}
	var job models.Job
	if err := m.jobs().FindOne(ctx, bson.M{"_id": oid}).Decode(&job); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return &job, nil
}

// ReplaceJob writes the whole job document, embedded bids and history
// included, but only if nobody else has written since the caller loaded
// it. The version filter is what makes two racing claims resolve to
// exactly one winner.
func (m *Mongo) ReplaceJob(ctx context.Context, job *models.Job) error {
	expected := job.Version
	job.Version = expected + 1
	res, err := m.jobs().ReplaceOne(ctx, bson.M{"_id": job.ID, "version": expected}, job)
	if err != nil {
		job.Version = expected
		return fmt.Errorf("replace job: %w", err)
	}
	if res.MatchedCount == 0 {
		job.Version = expected
		return jobs.ErrStaleJob
	}
	return nil
}

// DeleteJob removes a job document.
func (m *Mongo) DeleteJob(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return jobs.ErrJobNotFound
	}
	res, err := m.jobs().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

// ListJobs queries postings newest-first under the given scope.
func (m *Mongo) ListJobs(ctx context.Context, filter jobs.ListFilter) ([]models.Job, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PostedBy != "" {
		query["postedBy"] = filter.PostedBy
	}
	if filter.AssignedTo != "" {
		query["assignedTo"] = filter.AssignedTo
	}
	if filter.OpenOrAssignedTo != "" {
		query["$or"] = bson.A{
			bson.M{"status": models.JobStatusOpen},
			bson.M{"assignedTo": filter.OpenOrAssignedTo},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.jobs().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var result []models.Job
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	if result == nil {
		result = []models.Job{}
	}
	return result, nil
}
