package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/api/responses"
	"github.com/credeat/credeat-backend/api/validators"
	"github.com/credeat/credeat-backend/internal/ledger"
	walletsvc "github.com/credeat/credeat-backend/internal/wallet"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/pagination"
)

type walletOverviewResponse struct {
	*walletsvc.BalanceDTO
	Transactions []walletsvc.TransactionDTO `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

// WalletBalance returns the caller's committed balance plus the newest page
// of the wallet log.
func WalletBalance(svc *walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), userID, pagination.Params{Limit: pagination.DefaultLimit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, walletOverviewResponse{
			BalanceDTO:   balance,
			Transactions: page.Items,
			NextCursor:   page.NextCursor,
		})
	}
}

// WalletTransactions returns one cursor page of the caller's wallet log.
func WalletTransactions(svc *walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type payVendorRequest struct {
	VendorID    string `json:"vendor_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description,omitempty"`
}

type payVendorResponse struct {
	StudentBalance decimal.Decimal      `json:"student_balance"`
	VendorBalance  decimal.Decimal      `json:"vendor_balance"`
	StudentEntry   *walletEntryResponse `json:"student_entry"`
	VendorEntry    *walletEntryResponse `json:"vendor_entry"`
}

// WalletPay moves credits from the calling student to a vendor wallet.
func WalletPay(engine ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet engine unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := uuid.Parse(strings.TrimSpace(body.VendorID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id"))
			return
		}

		amount, err := parseAmount(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := engine.PayVendor(r.Context(), ledger.PayVendorInput{
			StudentID:   userID,
			VendorID:    vendorID,
			Amount:      amount,
			Description: strings.TrimSpace(body.Description),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payVendorResponse{
			StudentBalance: result.StudentBalance,
			VendorBalance:  result.VendorBalance,
			StudentEntry:   toWalletEntryResponse(result.StudentEntry),
			VendorEntry:    toWalletEntryResponse(result.VendorEntry),
		})
	}
}

type withdrawRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description,omitempty"`
}

type withdrawResponse struct {
	Balance     decimal.Decimal      `json:"balance"`
	Transaction *walletEntryResponse `json:"transaction"`
}

// WalletWithdraw records the calling vendor cashing out credits.
func WalletWithdraw(engine ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet engine unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body withdrawRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := parseAmount(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := engine.RequestWithdrawal(r.Context(), ledger.WithdrawalInput{
			VendorID:    userID,
			Amount:      amount,
			Description: strings.TrimSpace(body.Description),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, withdrawResponse{
			Balance:     result.Balance,
			Transaction: toWalletEntryResponse(result.Transaction),
		})
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string")
	}
	return amount, nil
}
