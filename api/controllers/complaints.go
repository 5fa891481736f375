package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/credeat/credeat-backend/api/responses"
	"github.com/credeat/credeat-backend/api/validators"
	complaintsvc "github.com/credeat/credeat-backend/internal/complaints"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

type complaintResponse struct {
	ID          uuid.UUID               `json:"id"`
	UserID      uuid.UUID               `json:"user_id"`
	Category    enums.ComplaintCategory `json:"category"`
	Description string                  `json:"description"`
	Status      enums.ComplaintStatus   `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func toComplaintResponse(c models.Complaint) complaintResponse {
	return complaintResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Category:    c.Category,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toComplaintResponses(items []models.Complaint) []complaintResponse {
	payload := make([]complaintResponse, 0, len(items))
	for _, item := range items {
		payload = append(payload, toComplaintResponse(item))
	}
	return payload
}

type fileComplaintRequest struct {
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// FileComplaint records a new complaint from the caller.
func FileComplaint(svc *complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body fileComplaintRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseComplaintCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		complaint, err := svc.File(r.Context(), complaintsvc.FileComplaintInput{
			UserID:      userID,
			Category:    category,
			Description: body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toComplaintResponse(*complaint))
	}
}

// ListOwnComplaints returns the caller's complaints, newest first.
func ListOwnComplaints(svc *complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListOwn(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toComplaintResponses(items))
	}
}

// ListAllComplaints returns every complaint, optionally filtered by status.
// Admin only.
func ListAllComplaints(svc *complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		var status *enums.ComplaintStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseComplaintStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		items, err := svc.ListAll(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toComplaintResponses(items))
	}
}

type updateComplaintRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateComplaintStatus moves a complaint through triage. Admin only.
func UpdateComplaintStatus(svc *complaintsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaint service unavailable"))
			return
		}

		complaintID, err := pathID(chi.URLParam(r, "complaintId"), "complaint id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateComplaintRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseComplaintStatus(strings.TrimSpace(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		complaint, err := svc.UpdateStatus(r.Context(), complaintID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toComplaintResponse(*complaint))
	}
}
