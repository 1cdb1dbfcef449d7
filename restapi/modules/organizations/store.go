// Package organizations implements the REST API handlers for the primary
// listed resource.
package organizations

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
)

// GetOrganization loads an organization by document key
func GetOrganization(ctx context.Context, db database.DBConnection, key string) (*model.Organization, error) {
	query := `FOR o IN organizations FILTER o._key == @key RETURN o`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var org model.Organization
	if _, err := cursor.ReadDocument(ctx, &org); err != nil {
		return nil, fmt.Errorf("organization not found")
	}
	return &org, nil
}

// GetOrganizationExpanded loads an organization with its offerings inlined
func GetOrganizationExpanded(ctx context.Context, db database.DBConnection, key string) (map[string]interface{}, error) {
	query := `
		FOR o IN organizations
			FILTER o._key == @key
			LET offs = (FOR of IN offerings FILTER of.organization == o._key RETURN of)
			RETURN MERGE(o, { offerings: offs })
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
		return nil, fmt.Errorf("organization not found")
	}
	return doc, nil
}

// InsertOrganization inserts without any ownership limit (admin path)
func InsertOrganization(ctx context.Context, db database.DBConnection, org *model.Organization) error {
	query := `INSERT @doc INTO organizations RETURN NEW._key`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"doc": org},
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	var key string
	if _, err := cursor.ReadDocument(ctx, &key); err != nil {
		return err
	}
	org.Key = key
	return nil
}

// InsertOrganizationOnce atomically inserts the organization unless the owner
// already has one. The check and insert run inside a single AQL statement, so
// two racing creates from the same owner cannot both pass.
func InsertOrganizationOnce(ctx context.Context, db database.DBConnection, org *model.Organization) (bool, error) {
	query := `
		UPSERT { owner: @owner }
			INSERT @doc
			UPDATE {}
		IN organizations
		RETURN { existed: OLD != null, key: NEW._key }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"owner": org.Owner,
			"doc":   org,
		},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	var res struct {
		Existed bool   `json:"existed"`
		Key     string `json:"key"`
	}
	if _, err := cursor.ReadDocument(ctx, &res); err != nil {
		return false, err
	}
	if res.Existed {
		return false, nil
	}

	org.Key = res.Key
	return true, nil
}

// ReplaceOrganization persists the full organization document
func ReplaceOrganization(ctx context.Context, db database.DBConnection, org *model.Organization) error {
	query := `REPLACE @key WITH @doc IN organizations`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": org.Key,
			"doc": org,
		},
	})
	return err
}

// DeleteOrganization removes the organization and cascades to its offerings
// and reviews. The three statements are not transactional; a crash in between
// leaves orphans that the next write self-heals (accepted staleness).
func DeleteOrganization(ctx context.Context, db database.DBConnection, key string) error {
	cascade := []string{
		`FOR of IN offerings FILTER of.organization == @key REMOVE of IN offerings`,
		`FOR r IN reviews FILTER r.organization == @key REMOVE r IN reviews`,
		`REMOVE @key IN organizations`,
	}

	for _, query := range cascade {
		if _, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{"key": key},
		}); err != nil {
			return err
		}
	}
	return nil
}

// FindInRadius returns the organizations whose location lies within
// radiusMeters of the given point
func FindInRadius(ctx context.Context, db database.DBConnection, lat, lng, radiusMeters float64) ([]model.Organization, error) {
	query := `
		FOR o IN organizations
			FILTER o.location.coordinates != null
			FILTER GEO_DISTANCE([@lng, @lat], o.location.coordinates) <= @radius
			RETURN o
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"lat":    lat,
			"lng":    lng,
			"radius": radiusMeters,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	orgs := []model.Organization{}
	for cursor.HasMore() {
		var org model.Organization
		if _, err := cursor.ReadDocument(ctx, &org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// SetPhoto records the stored photo filename on the organization
func SetPhoto(ctx context.Context, db database.DBConnection, key, filename string) error {
	query := `UPDATE @key WITH { photo: @photo, updated_at: @now } IN organizations`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":   key,
			"photo": filename,
			"now":   time.Now(),
		},
	})
	return err
}
