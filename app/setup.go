package app

import (
	"fmt"
	"log"
	"os"

	"github.com/aulavivo/lms-api/api"
	"github.com/aulavivo/lms-api/config"
	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/router"
	"github.com/aulavivo/lms-api/services/cron"
	"github.com/aulavivo/lms-api/services/spaces"
	"github.com/aulavivo/lms-api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Raw SQL read store for the ordered student catalog endpoints
	catalog, err := database.Start()
	if err != nil {
		print("Failed to open the raw catalog store\n")
		return err
	}

	// Redis backs brute force protection and the rating summary cache.
	// The app runs without it, just unguarded and uncached.
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v", err)
			redisCache = nil
		}
	}

	// Spaces client for lesson attachments, nil when unconfigured
	spacesClient, err := spaces.FromEnv(getEnv)
	if err != nil {
		log.Printf("Warning: Failed to initialize Spaces client: %v", err)
		spacesClient = nil
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db, redisCache)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		catalog.Close()
		store.Close()
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (security middleware is applied inside)
	router.SetupRoutes(app, store, catalog, redisCache, spacesClient)

	// Get the PORT & Start the Server
	return server.Run()

}
