package controllers

import (
	"net/http"

	"github.com/credeat/credeat-backend/api/responses"
	"github.com/credeat/credeat-backend/pkg/config"
	"github.com/credeat/credeat-backend/pkg/db"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CredEat-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the datastore and the session store
// both answer a ping.
func HealthReady(cfg *config.Config, database db.Pinger, sessions redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CredEat-Env", cfg.App.Env)

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if sessions != nil {
			if err := sessions.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
