package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"securecam-site/app/controller"
	"securecam-site/app/router"
	"securecam-site/config"
	"securecam-site/db"
	"securecam-site/models"
	"securecam-site/recommender"
	"securecam-site/repository"
	"securecam-site/service"
	"securecam-site/sitedata"
)

// Initialize wires storage, services and controllers and returns the HTTP handler
func Initialize(cfg *config.Config) (http.Handler, error) {
	ctx := context.Background()

	// Initialize local document repository
	repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	// Load the site document, then try the remote copy once
	store := sitedata.Open(ctx, repo)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	githubEnv := cfg.GitHubSettings()

	siteDataService := service.NewSiteDataService(githubEnv, cfg.SiteDataPath, cfg.GitHubAPIURL, httpClient)
	if backup := openBackup(ctx, cfg); backup != nil {
		siteDataService.WithBackup(backup)
	}

	hydrateCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store.Hydrate(hydrateCtx, siteDataService, githubEnv)
	cancel()

	engine, err := loadEngine(cfg.RecommenderRulesPath)
	if err != nil {
		return nil, err
	}

	uploadService := service.NewUploadService(githubEnv, cfg.GitHubAPIURL, httpClient, cfg.UploadMaxBytes, cfg.UploadMaxDimension, cfg.PublicBaseURL)

	chatService := service.NewChatService(cfg.AIAPIKey, cfg.AIAPIURL, cfg.AIModel, nil, func() models.AISettings {
		doc, _ := store.Snapshot()
		return doc.AISettings
	})

	catalogService, err := service.NewCatalogService(cfg.RenderBaseURL(), cfg.ChromePath)
	if err != nil {
		return nil, err
	}

	// Create controllers
	controllers := &router.Controllers{
		SiteData:   controller.NewSiteDataController(store, siteDataService, githubEnv),
		Upload:     controller.NewUploadController(uploadService, cfg.UploadMaxBytes),
		AI:         controller.NewAIController(chatService),
		Recommend:  controller.NewRecommendController(store, engine),
		Catalog:    controller.NewCatalogController(store, catalogService, cfg.AdminToken),
		AdminToken: cfg.AdminToken,
	}

	if cfg.AdminToken == "" {
		log.Printf("⚠️  ADMIN_TOKEN is not set, admin routes are open")
	}

	return router.SetupRoutes(controllers), nil
}

// openRepository picks the local document store named by SITE_STORE
func openRepository(cfg *config.Config) (repository.SiteDataRepositoryInterface, error) {
	switch cfg.SiteStore {
	case config.StorePostgres:
		conn, err := db.InitDB(db.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repository.NewSQLSiteDataRepository(conn, db.DriverPostgres), nil
	case config.StoreFile:
		repo, err := repository.NewFileSiteDataRepository(cfg.SiteDataFile)
		if err != nil {
			return nil, err
		}
		log.Printf("📄 Using site data file %s", repo.Path())
		return repo, nil
	default:
		conn, err := db.InitDB(db.DriverSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repository.NewSQLSiteDataRepository(conn, db.DriverSQLite), nil
	}
}

// openBackup returns the Drive mirror, or nil when it is not configured or unavailable
func openBackup(ctx context.Context, cfg *config.Config) service.BackupServiceInterface {
	if cfg.DriveBackupFolderID == "" {
		return nil
	}
	backup, err := service.NewDriveBackupService(ctx, cfg.GoogleCredentials, cfg.DriveBackupFolderID)
	if err != nil {
		log.Printf("⚠️  Drive backup disabled: %v", err)
		return nil
	}
	log.Printf("✓ Drive backup enabled (folder %s)", cfg.DriveBackupFolderID)
	return backup
}

func loadEngine(rulesPath string) (*recommender.Engine, error) {
	if rulesPath == "" {
		return recommender.NewDefaultEngine()
	}
	rules, err := recommender.LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ Recommender rules loaded from %s", rulesPath)
	return recommender.NewEngine(rules), nil
}
