package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bant-qualifier/internal/evaluator"
	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/internal/qualify"
	"github.com/sells-group/bant-qualifier/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API for the qualification tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		eval := evaluator.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Evaluation)
		router := newRouter(env.records, env.weights, eval)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// apiProvider is the evaluation collaborator the HTTP layer submits to.
type apiProvider interface {
	Evaluate(ctx context.Context, input model.QualificationInput, weights model.BantWeights) (*model.Evaluation, error)
}

func newRouter(records *qualify.RecordStore, weights *qualify.WeightConfig, provider apiProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/opportunities", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, records.List())
	})

	r.Get("/opportunities/{id}", func(w http.ResponseWriter, req *http.Request) {
		opp, ok := records.Get(chi.URLParam(req, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		writeJSON(w, http.StatusOK, opp)
	})

	r.Delete("/opportunities/{id}", func(w http.ResponseWriter, req *http.Request) {
		// The confirmation gate is the caller's: the store deletes
		// unconditionally once invoked.
		if req.URL.Query().Get("confirm") != "true" {
			writeError(w, http.StatusBadRequest, "deletion requires confirm=true")
			return
		}
		if err := records.Delete(req.Context(), chi.URLParam(req, "id")); err != nil {
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/qualify", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ID    string                   `json:"id"`
			Input model.QualificationInput `json:"input"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := body.Input.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.ID != "" {
			if _, ok := records.Get(body.ID); !ok {
				writeError(w, http.StatusNotFound, "opportunity not found")
				return
			}
		}

		ev, err := provider.Evaluate(req.Context(), body.Input, weights.Get())
		if err != nil {
			zap.L().Error("evaluation failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "evaluation failed, please retry")
			return
		}

		id, err := records.RecordEvaluation(req.Context(), body.ID, body.Input, *ev)
		if err != nil {
			zap.L().Error("record evaluation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "evaluation failed, please retry")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         id,
			"evaluation": ev,
		})
	})

	r.Get("/weights", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, weights.Get())
	})

	r.Put("/weights", func(w http.ResponseWriter, req *http.Request) {
		var draft model.BantWeights
		if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := weights.Commit(req.Context(), draft); err != nil {
			writeError(w, http.StatusUnprocessableEntity, eris.Cause(err).Error())
			return
		}
		writeJSON(w, http.StatusOK, weights.Get())
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
