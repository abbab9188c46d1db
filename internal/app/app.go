package app

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/handlers"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/services/compare"
	"github.com/ternarybob/lexuz/internal/services/documents"
	"github.com/ternarybob/lexuz/internal/services/export"
	"github.com/ternarybob/lexuz/internal/services/library"
	"github.com/ternarybob/lexuz/internal/services/word"
	"github.com/ternarybob/lexuz/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// Services
	DocumentService *documents.Service
	CompareService  *compare.Service
	LibraryService  *library.Service
	BackupService   *library.BackupService
	WordService     *word.Service
	ExportService   *export.Service

	// Handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
	CompareHandler  *handlers.CompareHandler
	LibraryHandler  *handlers.LibraryHandler
	WordHandler     *handlers.WordHandler
}

// New builds the full application graph from configuration
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		cancel()
		return nil, err
	}

	documentStorage := storageManager.DocumentStorage()
	auditStorage := storageManager.AuditStorage()

	documentService := documents.NewService(documentStorage, auditStorage, logger)
	compareService := compare.NewService(documentStorage, logger)
	libraryService := library.NewService(storageManager, logger)
	backupService := library.NewBackupService(libraryService, storageManager.KeyValueStorage(), &config.Backup, logger)

	converter := word.NewPandocConverter(&config.Word, logger)
	wordService := word.NewService(converter, documentService, logger)
	exportService := export.NewService(converter, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		ctx:             ctx,
		cancelCtx:       cancel,
		StorageManager:  storageManager,
		DocumentService: documentService,
		CompareService:  compareService,
		LibraryService:  libraryService,
		BackupService:   backupService,
		WordService:     wordService,
		ExportService:   exportService,
		APIHandler:      handlers.NewAPIHandler(documentService, auditStorage, logger),
		DocumentHandler: handlers.NewDocumentHandler(documentService, exportService, logger),
		CompareHandler:  handlers.NewCompareHandler(compareService, logger),
		LibraryHandler:  handlers.NewLibraryHandler(libraryService, backupService, logger),
		WordHandler:     handlers.NewWordHandler(wordService, logger),
	}

	if err := backupService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Backup scheduler failed to start")
	}

	if !converter.Available() {
		logger.Warn().Msg("pandoc not found; Word import and docx export are disabled")
	}

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Context returns the application's root context
func (a *App) Context() context.Context {
	return a.ctx
}

// Close releases application resources in reverse dependency order
func (a *App) Close() error {
	a.BackupService.Stop()
	a.cancelCtx()

	if err := a.StorageManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close storage")
		return err
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
