package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"defi_direct_back/models"
	"defi_direct_back/pkg/paystack"
	"defi_direct_back/pkg/service"
)

type fakeTransfer struct {
	events     []string
	references []string
}

func (f *fakeTransfer) ListBanks() ([]paystack.Bank, error) { return nil, nil }
func (f *fakeTransfer) ResolveAccount(accountNumber, bankCode string) (string, error) {
	return "", nil
}
func (f *fakeTransfer) Transfer(userAddress string, req models.TransferRequest) (models.TransferResult, error) {
	return models.TransferResult{}, nil
}
func (f *fakeTransfer) BatchTransfer(userAddress string, req models.BatchRequest, progress func(models.BatchItemResult)) ([]models.BatchItemResult, error) {
	return nil, nil
}
func (f *fakeTransfer) HandlePayoutEvent(event, reference string) error {
	f.events = append(f.events, event)
	f.references = append(f.references, reference)
	return nil
}
func (f *fakeTransfer) GetTransactions(userAddress string) ([]models.Transaction, error) {
	return nil, nil
}
func (f *fakeTransfer) GetPending(userAddress string) ([]models.Transaction, error) {
	return nil, nil
}

const webhookSecret = "sk_test_secret"

func sign(secret, body string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookRouter(transfer *fakeTransfer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{Transfer: transfer}, webhookSecret)
	router := gin.New()
	router.POST("/webhook/paystack", h.PaystackWebhook)
	return router
}

func TestPaystackWebhook(t *testing.T) {
	body := `{"event":"transfer.success","data":{"reference":"abc123","status":"success"}}`

	tests := []struct {
		name       string
		signature  string
		wantStatus int
		wantEvents int
	}{
		{"valid signature", sign(webhookSecret, body), http.StatusOK, 1},
		{"wrong secret", sign("sk_other", body), http.StatusUnauthorized, 0},
		{"missing signature", "", http.StatusUnauthorized, 0},
		{"garbage signature", "deadbeef", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfer := &fakeTransfer{}
			router := newWebhookRouter(transfer)

			req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("x-paystack-signature", tt.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if len(transfer.events) != tt.wantEvents {
				t.Fatalf("events applied = %d, want %d", len(transfer.events), tt.wantEvents)
			}
			if tt.wantEvents == 1 {
				if transfer.events[0] != "transfer.success" || transfer.references[0] != "abc123" {
					t.Errorf("applied %s/%s, want transfer.success/abc123",
						transfer.events[0], transfer.references[0])
				}
			}
		})
	}
}

func TestPaystackWebhookTamperedBody(t *testing.T) {
	body := `{"event":"transfer.success","data":{"reference":"abc123"}}`
	signature := sign(webhookSecret, body)
	tampered := strings.Replace(body, "abc123", "evil99", 1)

	transfer := &fakeTransfer{}
	router := newWebhookRouter(transfer)

	req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", strings.NewReader(tampered))
	req.Header.Set("x-paystack-signature", signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for tampered body", w.Code)
	}
	if len(transfer.events) != 0 {
		t.Error("tampered event must not reach the service")
	}
}
