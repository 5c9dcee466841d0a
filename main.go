package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/clinicbook/clinic-app/backend"
	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/controllers"
	appcron "github.com/clinicbook/clinic-app/cron"
	"github.com/clinicbook/clinic-app/db"
	"github.com/clinicbook/clinic-app/persist"
	appredis "github.com/clinicbook/clinic-app/redis"
	"github.com/clinicbook/clinic-app/routes"
	"github.com/clinicbook/clinic-app/storage"
	"github.com/clinicbook/clinic-app/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	var api backend.API
	var reminders appcron.ReminderSource

	switch os.Getenv("APP_MODE") {
	case "live":
		db.Init()
		live := backend.NewLiveBackend(db.GetDB())
		api = live
		reminders = live
	default:
		mock := buildMockBackend()
		defer mock.Close()
		api = mock
		reminders = mock
	}

	controllers.SetBackend(api)
	appcron.StartCronJobs(reminders)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Clinic booking API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupDoctorRoutes(app)
	routes.SetupPatientRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupNotificationRoutes(app)
	routes.SetupAdminRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Fatal(app.Listen(":" + port))
}

// buildMockBackend assembles the simulated backend: a storage medium
// for persistence, the sync transports layered on top of it, and the
// in-memory stores.
func buildMockBackend() *backend.MockBackend {
	var medium storage.Storage
	switch os.Getenv("STORAGE_BACKEND") {
	case "redis":
		appredis.InitRedis()
		medium = storage.NewRedisStorage(appredis.Client)
	case "file":
		dir := os.Getenv("STORAGE_DIR")
		if dir == "" {
			dir = "./data"
		}
		fs, err := storage.NewFileStorage(dir)
		if err != nil {
			log.Fatalf("Failed to open storage directory %s: %v", dir, err)
		}
		medium = fs
	default:
		medium = storage.NewMemoryStorage()
	}

	transports := []bus.Transport{
		bus.NewBroker(),
		bus.NewStorageTransport(medium),
	}
	if os.Getenv("SYNC_REDIS") == "1" {
		if appredis.Client == nil {
			appredis.InitRedis()
		}
		transports = append(transports, bus.NewRedisTransport(appredis.Client))
	}

	st := store.NewStore()
	codec := persist.NewCodec(st, medium)
	mock := backend.NewMockBackend(st, codec, bus.NewMultiTransport(transports...))

	if err := codec.StartAutosave("@every 30s"); err != nil {
		log.Printf("Failed to start autosave: %v", err)
	}
	return mock
}
