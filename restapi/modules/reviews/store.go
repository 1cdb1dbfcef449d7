// Package reviews implements the REST API handlers for user reviews of
// organizations.
package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
)

// GetReview loads a review by document key
func GetReview(ctx context.Context, db database.DBConnection, key string) (*model.Review, error) {
	query := `FOR r IN reviews FILTER r._key == @key RETURN r`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var review model.Review
	if _, err := cursor.ReadDocument(ctx, &review); err != nil {
		return nil, fmt.Errorf("review not found")
	}
	return &review, nil
}

// GetReviewExpanded loads a review with a name/description projection of its
// organization inlined
func GetReviewExpanded(ctx context.Context, db database.DBConnection, key string) (map[string]interface{}, error) {
	query := `
		FOR r IN reviews
			FILTER r._key == @key
			LET org = FIRST(FOR o IN organizations FILTER o._key == r.organization RETURN KEEP(o, "_key", "name", "description"))
			RETURN MERGE(r, { organization: org })
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var doc map[string]interface{}
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("review not found")
	}
	return doc, nil
}

// ListByOrganization returns all reviews under one organization
func ListByOrganization(ctx context.Context, db database.DBConnection, orgKey string) ([]model.Review, error) {
	query := `
		FOR r IN reviews
			FILTER r.organization == @org
			SORT r.created_at DESC
			RETURN r
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"org": orgKey},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	reviews := []model.Review{}
	for cursor.HasMore() {
		var review model.Review
		if _, err := cursor.ReadDocument(ctx, &review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// InsertReview inserts a new review. The unique index on
// (organization, owner) rejects a second review from the same user, which
// surfaces as a duplicate-value error to the caller.
func InsertReview(ctx context.Context, db database.DBConnection, review *model.Review) error {
	query := `INSERT @doc INTO reviews RETURN NEW._key`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"doc": review},
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	var key string
	if _, err := cursor.ReadDocument(ctx, &key); err != nil {
		return err
	}
	review.Key = key
	return nil
}

// ReplaceReview persists the full review document
func ReplaceReview(ctx context.Context, db database.DBConnection, review *model.Review) error {
	query := `REPLACE @key WITH @doc IN reviews`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": review.Key,
			"doc": review,
		},
	})
	return err
}

// DeleteReview removes a review by key
func DeleteReview(ctx context.Context, db database.DBConnection, key string) error {
	query := `REMOVE @key IN reviews`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	return err
}

// RecomputeAverageRating refreshes the derived rating average on the
// organization after its reviews changed. With no reviews left the average
// becomes null. Runs synchronously with the triggering write but not
// transactionally.
func RecomputeAverageRating(ctx context.Context, db database.DBConnection, orgKey string) error {
	query := `
		LET avg = AVG(FOR r IN reviews FILTER r.organization == @org RETURN r.rating)
		UPDATE @org WITH {
			average_rating: avg,
			updated_at: @now
		} IN organizations OPTIONS { keepNull: false }
	`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"org": orgKey,
			"now": time.Now(),
		},
	})
	return err
}
