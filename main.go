package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"feeconsole-service/internal/accounting"
	"feeconsole-service/internal/activity"
	"feeconsole-service/internal/catalog"
	"feeconsole-service/internal/config"
	"feeconsole-service/internal/consent"
	"feeconsole-service/internal/db"
	"feeconsole-service/internal/events"
	"feeconsole-service/internal/fault"
	"feeconsole-service/internal/integrations"
	"feeconsole-service/internal/logging"
	"feeconsole-service/internal/metrics"
	"feeconsole-service/internal/payment"
	"feeconsole-service/internal/rest"
)

// browserConsent adapts the concrete opener to the accounting interface.
type browserConsent struct {
	opener *consent.BrowserOpener
}

func (b browserConsent) Open(url string) (accounting.ConsentSession, error) {
	return b.opener.Open(url)
}

func main() {
	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var auditLog activity.Log = activity.NewMemoryLog()
	if cfg.Database.Host != "" {
		connStr := db.ConnStr(cfg.Database)
		db.RunMigrations(connStr, "migrations")

		pool, err := db.GetPool(connStr)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()

		auditLog = db.NewActivityRepository(pool)
	}

	var publisher payment.Publisher
	if cfg.Kafka.Broker.URL != "" {
		writer := events.NewWriter(cfg.Kafka)
		defer writer.Close()
		publisher = events.NewPublisher(writer, logger)

		settlementReader := events.NewReader(cfg.Kafka.Broker.URL, cfg.Kafka.Topic.SettlementEvents, cfg.Kafka.Reader.GroupID)
		defer settlementReader.Close()
		events.ReadSettlementEvents(ctx, settlementReader, events.NewSettlementProcessor(auditLog, logger), logger)
	}

	settlementClient := rest.NewClient(cfg.Settlement.URL, cfg.Settlement.Token, cfg.Settlement.TimeoutMs, logger)
	accountingClient := rest.NewClient(cfg.Accounting.URL, cfg.Accounting.Token, cfg.Accounting.TimeoutMs, logger)

	methods := catalog.Default()
	dispatcher := payment.NewDispatcher(methods, settlementClient, publisher, logger)
	tracker := payment.NewStatusTracker(settlementClient, logger)

	syncManager := accounting.NewSyncManager(accountingClient, auditLog, cfg.Accounting.Sync.MaxDaysBack, logger)
	analytics := accounting.NewAnalytics(accountingClient, logger)

	opener := consent.NewBrowserOpener(logger)
	authManager := accounting.NewAuthManager(accountingClient, browserConsent{opener}, syncManager,
		auditLog, cfg.Accounting.Auth.PollIntervalMs, cfg.Accounting.Auth.TimeoutMs, logger)

	integrationManager := integrations.NewManager(accountingClient, auditLog, logger)

	defaultDaysBack := cfg.Accounting.Sync.DefaultDaysBack
	if defaultDaysBack <= 0 {
		defaultDaysBack = 30
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /payment-methods", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, ok(methods.Methods()))
	})

	mux.HandleFunc("POST /payments", func(w http.ResponseWriter, r *http.Request) {
		var req payment.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond(w, http.StatusBadRequest, fail("Invalid request body"))
			return
		}

		result := dispatcher.Process(r.Context(), req)
		respond(w, http.StatusOK, envelope{Success: result.Success, Data: result, Message: result.Message})
	})

	mux.HandleFunc("GET /payments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		status, err := tracker.Check(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err, "Failed to fetch payment status")
			return
		}
		respond(w, http.StatusOK, ok(status))
	})

	mux.HandleFunc("GET /quickbooks/auth-url", func(w http.ResponseWriter, r *http.Request) {
		url, err := authManager.AuthURL(r.Context())
		if err != nil {
			respondError(w, err, "Failed to obtain authorization URL")
			return
		}
		respond(w, http.StatusOK, ok(map[string]string{"auth_url": url}))
	})

	mux.HandleFunc("POST /quickbooks/authorize", func(w http.ResponseWriter, r *http.Request) {
		outcome, status, err := authManager.Authorize(r.Context())
		if err != nil {
			respondError(w, err, "Authorization failed")
			return
		}
		respond(w, http.StatusOK, ok(map[string]any{"outcome": outcome.String(), "sync_status": status}))
	})

	mux.HandleFunc("POST /quickbooks/auth-complete", func(w http.ResponseWriter, r *http.Request) {
		opener.MarkClosed()
		respond(w, http.StatusOK, ok(map[string]string{"message": "Consent window closure recorded"}))
	})

	mux.HandleFunc("POST /quickbooks/sync-payments-to-cache", func(w http.ResponseWriter, r *http.Request) {
		daysBack := defaultDaysBack
		if raw := r.URL.Query().Get("days_back"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respond(w, http.StatusBadRequest, fail("days_back must be an integer"))
				return
			}
			daysBack = parsed
		}

		result, err := syncManager.Sync(r.Context(), daysBack)
		if err != nil {
			if errors.Is(err, accounting.ErrSyncInFlight) {
				respond(w, http.StatusConflict, fail(err.Error()))
				return
			}
			respondError(w, err, "Failed to sync payments to cache")
			return
		}
		respond(w, http.StatusOK, ok(result))
	})

	mux.HandleFunc("GET /quickbooks/sync-status", func(w http.ResponseWriter, r *http.Request) {
		status, err := syncManager.Status(r.Context())
		if err != nil {
			respondError(w, err, "Failed to fetch sync status")
			return
		}
		respond(w, http.StatusOK, ok(status))
	})

	mux.HandleFunc("POST /quickbooks/clear-cache", func(w http.ResponseWriter, r *http.Request) {
		result, err := syncManager.ClearCache(r.Context())
		if err != nil {
			respondError(w, err, "Failed to clear cache")
			return
		}
		respond(w, http.StatusOK, ok(result))
	})

	mux.HandleFunc("GET /quickbooks/analytics/payments", func(w http.ResponseWriter, r *http.Request) {
		summary, err := analytics.PaymentSummary(r.Context())
		if err != nil {
			if errors.Is(err, accounting.ErrSyncRequired) {
				respond(w, http.StatusNotFound, fail("Sync required before analytics are available"))
				return
			}
			respondError(w, err, "Failed to fetch payment analytics")
			return
		}
		respond(w, http.StatusOK, ok(summary))
	})

	mux.HandleFunc("GET /activity", func(w http.ResponseWriter, r *http.Request) {
		entries, err := auditLog.Entries(r.Context())
		if err != nil {
			respondError(w, err, "Failed to fetch activity log")
			return
		}
		respond(w, http.StatusOK, ok(entries))
	})

	mux.HandleFunc("POST /integrations/{id}/connect", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		message, err := integrationManager.Connect(r.Context(), r.PathValue("id"), body)
		if err != nil {
			respondError(w, err, "Failed to connect integration")
			return
		}
		respond(w, http.StatusOK, ok(map[string]string{"message": message}))
	})

	mux.HandleFunc("POST /integrations/{id}/disconnect", func(w http.ResponseWriter, r *http.Request) {
		message, err := integrationManager.Disconnect(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err, "Failed to disconnect integration")
			return
		}
		respond(w, http.StatusOK, ok(map[string]string{"message": message}))
	})

	mux.HandleFunc("POST /integrations/{id}/test", func(w http.ResponseWriter, r *http.Request) {
		message, err := integrationManager.Test(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err, "Failed to test integration")
			return
		}
		respond(w, http.StatusOK, ok(map[string]string{"message": message}))
	})

	port := config.GetEnv("SERVER_PORT", cfg.Server.Port)
	if port == "" {
		port = "8080"
	}

	logger.Info("Starting server", "port", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(data any) envelope {
	return envelope{Success: true, Data: data}
}

func fail(message string) envelope {
	return envelope{Success: false, Message: message}
}

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusBadGateway

	var httpErr *fault.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
	}

	var valErr *fault.ValidationError
	if errors.As(err, &valErr) {
		status = http.StatusBadRequest
	}

	respond(w, status, fail(fault.UserMessage(err, fallback)))
}
