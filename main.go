// package main provides the entry point for the traincamp-backend
// microservice, a REST API for training organizations, their course
// offerings and user reviews.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/joho/godotenv"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/internal/api"
	"github.com/traincamp/traincamp-backend/restapi/modules/auth"
)

var logger = database.InitLogger()

func main() {
	// config.env is optional; real deployments configure via the environment
	if err := godotenv.Load("config.env"); err == nil {
		logger.Sugar().Info("Loaded configuration from config.env")
	}
	// The signing secret must be read after the config file is in the
	// environment, never at package init
	auth.LoadJWTSecret()

	seed := flag.Bool("seed", false, "import seed data from SEED_DATA_PATH and exit")
	flush := flag.Bool("flush", false, "delete all documents and exit")
	flag.Parse()

	db := database.InitializeDatabase()

	if *seed || *flush {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if *flush {
			if err := flushData(ctx, db); err != nil {
				logger.Sugar().Fatalf("Failed to flush data: %v", err)
			}
			logger.Sugar().Info("All documents deleted")
		}
		if *seed {
			if err := seedData(ctx, db); err != nil {
				logger.Sugar().Fatalf("Failed to import seed data: %v", err)
			}
			logger.Sugar().Info("Seed data imported")
		}
		return
	}

	app := api.NewFiberApp(db)

	port := database.GetEnvDefault("MS_PORT", "5000")
	go func() {
		logger.Sugar().Infof("Starting server on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logger.Sugar().Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Sugar().Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Sugar().Errorf("Shutdown error: %v", err)
	}
}

// seedData imports JSON fixture files named after each collection from
// SEED_DATA_PATH. Missing files are skipped.
func seedData(ctx context.Context, db database.DBConnection) error {
	dir := database.GetEnvDefault("SEED_DATA_PATH", "./_data")

	for _, collection := range []string{
		database.ColUsers,
		database.ColOrganizations,
		database.ColOfferings,
		database.ColReviews,
	} {
		raw, err := os.ReadFile(filepath.Join(dir, collection+".json"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		var docs []map[string]interface{}
		if err := json.Unmarshal(raw, &docs); err != nil {
			return err
		}

		query := `FOR doc IN @docs INSERT doc INTO ` + collection
		if _, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{"docs": docs},
		}); err != nil {
			return err
		}
		logger.Sugar().Infof("Imported %d documents into %s", len(docs), collection)
	}
	return nil
}

// flushData removes every document from every collection
func flushData(ctx context.Context, db database.DBConnection) error {
	for _, collection := range []string{
		database.ColReviews,
		database.ColOfferings,
		database.ColOrganizations,
		database.ColUsers,
	} {
		query := `FOR doc IN ` + collection + ` REMOVE doc IN ` + collection
		if _, err := db.Database.Query(ctx, query, nil); err != nil {
			return err
		}
	}
	return nil
}
