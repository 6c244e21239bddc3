package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/payments"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
	"github.com/terangalabs/kadoo-backend/pkg/types"
)

type fakePaymentsService struct {
	initiated []payments.InitiateParams
	refunds   []uuid.UUID
	err       error
}

func (f *fakePaymentsService) InitiatePayment(_ context.Context, params payments.InitiateParams) (*payments.InitiateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.initiated = append(f.initiated, params)
	return &payments.InitiateResult{
		DonationID: uuid.New(),
		PaymentURL: "https://checkout.example/abc",
	}, nil
}

func (f *fakePaymentsService) ProcessWebhook(context.Context, paydunya.WebhookEvent) error {
	return nil
}

func (f *fakePaymentsService) RefundDonation(_ context.Context, donationID uuid.UUID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.refunds = append(f.refunds, donationID)
	return nil
}

func (f *fakePaymentsService) ReconcilePayments(context.Context) (int, error) {
	return 0, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func TestInitiatePaymentCreatesDonation(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := InitiatePayment(svc, testControllerLogger())

	potID := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"pot_id":     potID.String(),
		"amount":     5000,
		"donor_name": "Fatou",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if len(svc.initiated) != 1 {
		t.Fatalf("expected one initiation, got %d", len(svc.initiated))
	}
	got := svc.initiated[0]
	if got.PotID != potID || got.Amount != 5000 || got.DonorName != "Fatou" {
		t.Fatalf("params %+v", got)
	}
}

func TestInitiatePaymentRejectsInvalidBody(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := InitiatePayment(svc, testControllerLogger())

	cases := []map[string]any{
		{"pot_id": "not-a-uuid", "amount": 5000, "donor_name": "Fatou"},
		{"pot_id": uuid.NewString(), "amount": 0, "donor_name": "Fatou"},
		{"pot_id": uuid.NewString(), "amount": 5000},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: status %d", payload, rec.Code)
		}
	}
	if len(svc.initiated) != 0 {
		t.Fatalf("invalid request reached the service")
	}
}

func TestInitiatePaymentMapsServiceErrors(t *testing.T) {
	svc := &fakePaymentsService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "pot is not accepting donations")}
	handler := InitiatePayment(svc, testControllerLogger())

	body, _ := json.Marshal(map[string]any{
		"pot_id":     uuid.NewString(),
		"amount":     5000,
		"donor_name": "Fatou",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "pot is not accepting donations" {
		t.Fatalf("message %q", envelope.Error.Message)
	}
}

func TestRefundDonationParsesPathParam(t *testing.T) {
	svc := &fakePaymentsService{}
	donationID := uuid.New()

	r := chi.NewRouter()
	r.Post("/payments/{donationId}/refund", RefundDonation(svc, testControllerLogger()))

	body, _ := json.Marshal(map[string]any{"reason": "duplicate charge"})
	req := httptest.NewRequest(http.MethodPost, "/payments/"+donationID.String()+"/refund", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if len(svc.refunds) != 1 || svc.refunds[0] != donationID {
		t.Fatalf("refunds %v", svc.refunds)
	}
}

func TestRefundDonationRejectsBadID(t *testing.T) {
	svc := &fakePaymentsService{}
	r := chi.NewRouter()
	r.Post("/payments/{donationId}/refund", RefundDonation(svc, testControllerLogger()))

	req := httptest.NewRequest(http.MethodPost, "/payments/bogus/refund", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}
