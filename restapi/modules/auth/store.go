package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/model"
)

// GetUserByKey loads a user by document key
func GetUserByKey(ctx context.Context, db database.DBConnection, key string) (*model.User, error) {
	query := `FOR u IN users FILTER u._key == @key RETURN u`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

// GetUserByEmail loads a user, including the credential hash, by email
func GetUserByEmail(ctx context.Context, db database.DBConnection, email string) (*model.User, error) {
	query := `FOR u IN users FILTER LOWER(u.email) == LOWER(@email) LIMIT 1 RETURN u`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"email": email},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

// CreateUser inserts a new user. The unique index on email makes a duplicate
// registration fail with a unique-constraint error even when two requests
// race.
func CreateUser(ctx context.Context, db database.DBConnection, user *model.User) error {
	query := `INSERT @doc INTO users RETURN NEW._key`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"doc": user},
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	var key string
	if _, err := cursor.ReadDocument(ctx, &key); err != nil {
		return err
	}
	user.Key = key
	return nil
}

// SaveUser persists the full user document. REPLACE rather than UPDATE so
// cleared fields (a redeemed reset token) actually disappear from the store.
func SaveUser(ctx context.Context, db database.DBConnection, user *model.User) error {
	query := `REPLACE @key WITH @doc IN users`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": user.Key,
			"doc": user,
		},
	})
	return err
}

// DeleteUser removes a user by key
func DeleteUser(ctx context.Context, db database.DBConnection, key string) error {
	query := `REMOVE @key IN users`
	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	return err
}

// FindUserByResetToken resolves an unexpired reset token hash to its user.
// Expired or already-redeemed tokens match nothing.
func FindUserByResetToken(ctx context.Context, db database.DBConnection, tokenHash string) (*model.User, error) {
	query := `
		FOR u IN users
			FILTER u.reset_password_token == @hash
			   AND u.reset_password_expire > @now
			LIMIT 1
			RETURN u
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			// Whole seconds to match how expiries are stored, keeping the
			// RFC3339 string comparison exact
			"now":  time.Now().UTC().Truncate(time.Second),
			"hash": tokenHash,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, fmt.Errorf("token not found")
	}
	return &user, nil
}
