package controllers

import (
	"net/http"

	"github.com/credeat/credeat-backend/api/responses"
	analyticsvc "github.com/credeat/credeat-backend/internal/analytics"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

// WastageReport aggregates mess-wide skip behaviour for the admin dashboard.
func WastageReport(svc *analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		report, err := svc.Wastage(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
