// Package offerings implements the REST API handlers for the course-like
// items that belong to organizations.
package offerings

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
)

// GetOffering loads an offering by document key
func GetOffering(ctx context.Context, db database.DBConnection, key string) (*model.Offering, error) {
	query := `FOR of IN offerings FILTER of._key == @key RETURN of`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var offering model.Offering
	if _, err := cursor.ReadDocument(ctx, &offering); err != nil {
		return nil, fmt.Errorf("offering not found")
	}
	return &offering, nil
}

// GetOfferingExpanded loads an offering with a name/description projection of
// its organization inlined
func GetOfferingExpanded(ctx context.Context, db database.DBConnection, key string) (map[string]interface{}, error) {
	query := `
		FOR of IN offerings
			FILTER of._key == @key
			LET org = FIRST(FOR o IN organizations FILTER o._key == of.organization RETURN KEEP(o, "_key", "name", "description"))
			RETURN MERGE(of, { organization: org })
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
		return nil, fmt.Errorf("offering not found")
	}
	return doc, nil
}

// ListByOrganization returns all offerings under one organization
func ListByOrganization(ctx context.Context, db database.DBConnection, orgKey string) ([]model.Offering, error) {
	query := `
		FOR of IN offerings
			FILTER of.organization == @org
			SORT of.created_at DESC
			RETURN of
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"org": orgKey},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	offerings := []model.Offering{}
	for cursor.HasMore() {
		var offering model.Offering
		if _, err := cursor.ReadDocument(ctx, &offering); err != nil {
			return nil, err
		}
		offerings = append(offerings, offering)
	}
	return offerings, nil
}

// InsertOffering inserts a new offering
func InsertOffering(ctx context.Context, db database.DBConnection, offering *model.Offering) error {
	query := `INSERT @doc INTO offerings RETURN NEW._key`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"doc": offering},
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	var key string
	if _, err := cursor.ReadDocument(ctx, &key); err != nil {
		return err
	}
	offering.Key = key
	return nil
}

// ReplaceOffering persists the full offering document
func ReplaceOffering(ctx context.Context, db database.DBConnection, offering *model.Offering) error {
	query := `REPLACE @key WITH @doc IN offerings`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": offering.Key,
			"doc": offering,
		},
	})
	return err
}

// DeleteOffering removes an offering by key
func DeleteOffering(ctx context.Context, db database.DBConnection, key string) error {
	query := `REMOVE @key IN offerings`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	return err
}

// RecomputeAverageCost refreshes the derived average on the organization
// after its offerings changed. The average is rounded up to the nearest ten;
// with no offerings left it becomes null rather than keeping a stale value.
// Runs synchronously with the triggering write but not transactionally.
func RecomputeAverageCost(ctx context.Context, db database.DBConnection, orgKey string) error {
	query := `
		LET avg = AVG(FOR of IN offerings FILTER of.organization == @org RETURN of.cost)
		UPDATE @org WITH {
			average_cost: avg == null ? null : CEIL(avg / 10) * 10,
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
