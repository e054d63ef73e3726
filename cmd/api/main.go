package main

import (
	"fmt"
	"net/http"

	"github.com/R3cxcx/tetsos-sub000/internal/config"
	appHTTP "github.com/R3cxcx/tetsos-sub000/internal/handler/http"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/database"
	"github.com/R3cxcx/tetsos-sub000/internal/repository/postgresql"
	identityService "github.com/R3cxcx/tetsos-sub000/internal/service/identity"
	ingestService "github.com/R3cxcx/tetsos-sub000/internal/service/ingest"
	reconciliationService "github.com/R3cxcx/tetsos-sub000/internal/service/reconciliation"
	reviewService "github.com/R3cxcx/tetsos-sub000/internal/service/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	rawScanRepo := postgresql.NewRawScanRepository(db)
	mappingRepo := postgresql.NewMappingRepository(db)
	recordRepo := postgresql.NewAttendanceRecordRepository(db)
	txRunner := postgresql.NewTxRunner(db)

	resolver := identityService.NewResolver(employeeRepo, mappingRepo, rawScanRepo, cfg.Identity)
	ingestSvc := ingestService.NewIngestService(rawScanRepo, resolver)
	reconciliationSvc := reconciliationService.NewReconciliationService(
		txRunner,
		rawScanRepo,
		recordRepo,
		employeeRepo,
		cfg.Reconciliation,
	)
	reviewSvc := reviewService.NewReviewService(reconciliationSvc)

	rawScanHandler := appHTTP.NewRawScanHandler(ingestSvc, resolver)
	reconciliationHandler := appHTTP.NewReconciliationHandler(reviewSvc, reconciliationSvc)

	router := appHTTP.NewRouter(cfg.App.Env, rawScanHandler, reconciliationHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
