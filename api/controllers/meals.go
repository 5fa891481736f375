package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/api/responses"
	"github.com/credeat/credeat-backend/api/validators"
	mealsvc "github.com/credeat/credeat-backend/internal/meals"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

type mealResponse struct {
	ID         uuid.UUID             `json:"id"`
	Date       string                `json:"date"`
	Type       enums.MealType        `json:"type"`
	Menu       string                `json:"menu"`
	SkipCredit decimal.Decimal       `json:"skip_credit"`
	IsActive   bool                  `json:"is_active"`
	Selection  enums.SelectionStatus `json:"selection,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

func toMealResponse(meal models.Meal) mealResponse {
	return mealResponse{
		ID:         meal.ID,
		Date:       meal.Date.Format("2006-01-02"),
		Type:       meal.Type,
		Menu:       meal.Menu,
		SkipCredit: meal.SkipCredit,
		IsActive:   meal.IsActive,
		CreatedAt:  meal.CreatedAt,
		UpdatedAt:  meal.UpdatedAt,
	}
}

// ListMeals returns the catalog for a date range, annotated with the
// caller's current selection when the caller is a student.
func ListMeals(svc *mealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListForStudent(r.Context(), userID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]mealResponse, 0, len(items))
		for _, item := range items {
			resp := toMealResponse(item.Meal)
			resp.Selection = item.Status
			payload = append(payload, resp)
		}
		responses.WriteSuccess(w, payload)
	}
}

type createMealRequest struct {
	Date       string `json:"date" validate:"required"`
	Type       string `json:"type" validate:"required"`
	Menu       string `json:"menu" validate:"required"`
	SkipCredit string `json:"skip_credit" validate:"required"`
}

func (req createMealRequest) toInput() (mealsvc.CreateMealInput, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return mealsvc.CreateMealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	mealType, err := enums.ParseMealType(strings.TrimSpace(req.Type))
	if err != nil {
		return mealsvc.CreateMealInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal type")
	}
	credit, err := decimal.NewFromString(strings.TrimSpace(req.SkipCredit))
	if err != nil {
		return mealsvc.CreateMealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "skip_credit must be a decimal amount")
	}
	return mealsvc.CreateMealInput{
		Date:       date,
		Type:       mealType,
		Menu:       strings.TrimSpace(req.Menu),
		SkipCredit: credit,
	}, nil
}

// CreateMeal publishes a catalog entry. Admin only.
func CreateMeal(svc *mealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		var body createMealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meal, err := svc.CreateMeal(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toMealResponse(*meal))
	}
}

type updateMealRequest struct {
	Menu       string `json:"menu" validate:"required"`
	SkipCredit string `json:"skip_credit" validate:"required"`
}

// UpdateMeal revises the menu or skip credit of a published entry.
func UpdateMeal(svc *mealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		mealID, err := pathID(chi.URLParam(r, "mealId"), "meal id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateMealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		credit, err := decimal.NewFromString(strings.TrimSpace(body.SkipCredit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "skip_credit must be a decimal amount"))
			return
		}

		meal, err := svc.UpdateMeal(r.Context(), mealID, strings.TrimSpace(body.Menu), credit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toMealResponse(*meal))
	}
}

// DeactivateMeal closes a catalog entry for further selection.
func DeactivateMeal(svc *mealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		mealID, err := pathID(chi.URLParam(r, "mealId"), "meal id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateMeal(r.Context(), mealID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type selectionResponse struct {
	MealID              uuid.UUID             `json:"meal_id"`
	Status              enums.SelectionStatus `json:"status"`
	LinkedTransactionID *uuid.UUID            `json:"linked_transaction_id,omitempty"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// MySelections returns every choice the caller has recorded.
func MySelections(svc *mealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selections, err := svc.ListSelections(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]selectionResponse, 0, len(selections))
		for _, selection := range selections {
			payload = append(payload, selectionResponse{
				MealID:              selection.MealID,
				Status:              selection.Status,
				LinkedTransactionID: selection.LinkedTransactionID,
				UpdatedAt:           selection.UpdatedAt,
			})
		}
		responses.WriteSuccess(w, payload)
	}
}

type selectMealRequest struct {
	Status string `json:"status" validate:"required"`
}

// selectionStatus accepts the desired status either as a query parameter or
// in the JSON body.
func selectionStatus(r *http.Request) (enums.SelectionStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		var body selectMealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return "", err
		}
		raw = strings.TrimSpace(body.Status)
	}
	desired, err := enums.ParseSelectionStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selection status")
	}
	return desired, nil
}

type selectMealResponse struct {
	MealID      uuid.UUID             `json:"meal_id"`
	Status      enums.SelectionStatus `json:"status"`
	Balance     *decimal.Decimal      `json:"balance,omitempty"`
	Transaction *walletEntryResponse  `json:"transaction,omitempty"`
}

type walletEntryResponse struct {
	ID          uuid.UUID               `json:"id"`
	Type        enums.TransactionType   `json:"type"`
	Amount      decimal.Decimal         `json:"amount"`
	Description string                  `json:"description"`
	Status      enums.TransactionStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
}

func toWalletEntryResponse(tx *models.WalletTransaction) *walletEntryResponse {
	if tx == nil {
		return nil
	}
	return &walletEntryResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		Status:      tx.Status,
		CreatedAt:   tx.CreatedAt,
	}
}

// SelectMeal toggles the caller's attendance for one meal. Skipping earns
// the meal's credit; switching back to attending reverses it.
func SelectMeal(rec *mealsvc.Reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rec == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "meal service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mealID, err := pathID(chi.URLParam(r, "mealId"), "meal id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		desired, err := selectionStatus(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := rec.Toggle(r.Context(), mealsvc.ToggleInput{
			StudentID: userID,
			MealID:    mealID,
			Desired:   desired,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, selectMealResponse{
			MealID:      mealID,
			Status:      result.Status,
			Balance:     result.Balance,
			Transaction: toWalletEntryResponse(result.Transaction),
		})
	}
}
