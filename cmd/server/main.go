package main

import (
	"strings"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/cashbook"
	"ledger-backend/internal/config"
	"ledger-backend/internal/dashboard"
	"ledger-backend/internal/database"
	"ledger-backend/internal/daybook"
	"ledger-backend/internal/master"
	"ledger-backend/internal/models"
	"ledger-backend/internal/report"
	"ledger-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Errorf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	engine := daybook.New(
		daybook.NewStore(database.DB),
		daybook.WithLocation(cfg.Location),
		daybook.WithFetchTimeout(cfg.FetchTimeout),
	)
	txns := transaction.NewService(database.DB)
	reports := report.NewService(database.DB)

	api := app.Group("/api")

	// Public auth
	api.Get("/auth/status", auth.StatusHandler())
	api.Post("/auth/setup", auth.SetupPinHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Put("/auth/pin", auth.ChangePinHandler())

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	admin := auth.RequireScope(models.ScopeAdmin)

	protected.Get("/auth/me", auth.MeHandler())

	// Masters
	protected.Get("/parties", master.ListPartiesHandler())
	protected.Post("/parties", master.CreatePartyHandler())
	protected.Put("/parties/:id", master.UpdatePartyHandler())
	protected.Delete("/parties/:id", admin, master.DeletePartyHandler())

	protected.Get("/products", master.ListProductsHandler())
	protected.Post("/products", master.CreateProductHandler())
	protected.Put("/products/:id", master.UpdateProductHandler())
	protected.Delete("/products/:id", admin, master.DeleteProductHandler())

	protected.Get("/prices/:kind", master.ListPricesHandler())
	protected.Get("/prices/:kind/history", master.PriceHistoryHandler())
	protected.Put("/prices/:kind", auth.RequireScope(models.ScopePrice, models.ScopeAdmin), master.SetPriceHandler())

	// Transactions
	protected.Post("/purchases", transaction.CreatePurchaseHandler(txns))
	protected.Get("/purchases", transaction.ListPurchasesHandler(txns, cfg.Location))
	protected.Get("/purchases/unsupplied", transaction.UnsuppliedHandler(txns))
	protected.Delete("/purchases/:id", admin, transaction.DeletePurchaseHandler(txns))
	protected.Post("/supplies", transaction.CreateSupplyHandler(txns))
	protected.Get("/supplies", transaction.ListSuppliesHandler(txns, cfg.Location))
	protected.Delete("/supplies/:id", admin, transaction.DeleteSupplyHandler(txns))

	// Cash book
	protected.Post("/receipts", cashbook.CreateReceiptHandler(cfg))
	protected.Get("/receipts", cashbook.ListReceiptsHandler(cfg))
	protected.Delete("/receipts/:id", admin, cashbook.DeleteReceiptHandler())
	protected.Post("/payments", cashbook.CreatePaymentHandler(cfg))
	protected.Get("/payments", cashbook.ListPaymentsHandler(cfg))
	protected.Delete("/payments/:id", admin, cashbook.DeletePaymentHandler())
	protected.Post("/expenses", cashbook.CreateExpenseHandler(cfg))
	protected.Get("/expenses", cashbook.ListExpensesHandler(cfg))
	protected.Get("/expenses/summary", cashbook.ExpenseSummaryHandler(cfg))
	protected.Delete("/expenses/:id", admin, cashbook.DeleteExpenseHandler())

	// Daybook
	protected.Get("/daybook", daybook.RangeHandler(engine))
	protected.Get("/daybook/opening", daybook.OpeningHandler(engine))
	protected.Get("/daybook/export", daybook.ExportHandler(engine))

	// Dashboard
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler(cfg))

	// Reports
	protected.Get("/reports/party/:id", report.PartyReportHandler(reports, cfg.Location))
	protected.Get("/reports/party/:id/export", report.PartyExportHandler(reports, cfg.Location))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", admin, audit.UndoAuditLogHandler())

	log.Infof("Server listening on port %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
