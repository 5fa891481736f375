package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/api/middleware"
	"github.com/credeat/credeat-backend/internal/ledger"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
)

type stubLedgerService struct {
	transfer   *ledger.TransferResult
	withdrawal *ledger.OperationResult
	err        error

	lastPay      ledger.PayVendorInput
	lastWithdraw ledger.WithdrawalInput
}

func (s *stubLedgerService) CreditForSkip(ctx context.Context, input ledger.CreditForSkipInput) (*ledger.OperationResult, error) {
	return nil, s.err
}

func (s *stubLedgerService) ReverseToAttend(ctx context.Context, input ledger.ReverseToAttendInput) (*ledger.OperationResult, error) {
	return nil, s.err
}

func (s *stubLedgerService) PayVendor(ctx context.Context, input ledger.PayVendorInput) (*ledger.TransferResult, error) {
	s.lastPay = input
	return s.transfer, s.err
}

func (s *stubLedgerService) RequestWithdrawal(ctx context.Context, input ledger.WithdrawalInput) (*ledger.OperationResult, error) {
	s.lastWithdraw = input
	return s.withdrawal, s.err
}

func (s *stubLedgerService) RecomputeBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, s.err
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestWalletPaySuccess(t *testing.T) {
	studentID := uuid.New()
	vendorID := uuid.New()
	svc := &stubLedgerService{transfer: &ledger.TransferResult{
		StudentBalance: decimal.RequireFromString("70.00"),
		VendorBalance:  decimal.RequireFromString("30.00"),
		StudentEntry: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.TransactionTypeVendorPayment,
			Amount: decimal.RequireFromString("30.00"),
			Status: enums.TransactionStatusCompleted,
		},
		VendorEntry: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.TransactionTypeVendorPayment,
			Amount: decimal.RequireFromString("30.00"),
			Status: enums.TransactionStatusCompleted,
		},
	}}
	handler := WalletPay(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/wallet/pay",
		`{"vendor_id":"`+vendorID.String()+`","amount":"30.00","description":"snacks"}`, studentID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastPay.StudentID != studentID || svc.lastPay.VendorID != vendorID {
		t.Fatalf("unexpected pay input %+v", svc.lastPay)
	}
	if !svc.lastPay.Amount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected amount 30.00 got %s", svc.lastPay.Amount)
	}

	var envelope struct {
		Data struct {
			StudentBalance decimal.Decimal `json:"student_balance"`
			VendorBalance  decimal.Decimal `json:"vendor_balance"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.StudentBalance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected student balance 70.00 got %s", envelope.Data.StudentBalance)
	}
}

func TestWalletPayRejectsBadAmount(t *testing.T) {
	handler := WalletPay(&stubLedgerService{}, nil)
	req := authedRequest(http.MethodPost, "/api/v1/wallet/pay",
		`{"vendor_id":"`+uuid.NewString()+`","amount":"not-a-number"}`, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWalletPayInsufficientFunds(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance 10.00 cannot cover 30.00")}
	handler := WalletPay(svc, nil)
	req := authedRequest(http.MethodPost, "/api/v1/wallet/pay",
		`{"vendor_id":"`+uuid.NewString()+`","amount":"30.00"}`, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "INSUFFICIENT_FUNDS" {
		t.Fatalf("expected INSUFFICIENT_FUNDS got %s", envelope.Error.Code)
	}
}

func TestWalletPayRequiresAuthContext(t *testing.T) {
	handler := WalletPay(&stubLedgerService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/pay", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestWalletWithdrawSuccess(t *testing.T) {
	vendorID := uuid.New()
	svc := &stubLedgerService{withdrawal: &ledger.OperationResult{
		Balance: decimal.RequireFromString("5.00"),
		Transaction: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.TransactionTypeWithdrawal,
			Amount: decimal.RequireFromString("25.00"),
			Status: enums.TransactionStatusCompleted,
		},
	}}
	handler := WalletWithdraw(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/wallet/withdraw",
		`{"amount":"25.00","description":"weekly cashout"}`, vendorID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastWithdraw.VendorID != vendorID {
		t.Fatalf("expected vendor %s got %s", vendorID, svc.lastWithdraw.VendorID)
	}

	var envelope struct {
		Data struct {
			Balance decimal.Decimal `json:"balance"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Balance.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected balance 5.00 got %s", envelope.Data.Balance)
	}
}

func TestWalletWithdrawMissingAmount(t *testing.T) {
	handler := WalletWithdraw(&stubLedgerService{}, nil)
	req := authedRequest(http.MethodPost, "/api/v1/wallet/withdraw", `{}`, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
