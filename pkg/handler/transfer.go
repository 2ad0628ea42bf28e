package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"defi_direct_back/models"
	"defi_direct_back/pkg/repository"
	"defi_direct_back/pkg/service"
)

func (h *Handler) ListBanks(c *gin.Context) {
	banks, err := h.service.Transfer.ListBanks()
	if err != nil {
		newErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	okResponse(c, "data", banks)
}

type resolveAccountInput struct {
	AccountNumber string `json:"account_number" binding:"required"`
	BankCode      string `json:"bank_code" binding:"required"`
}

func (h *Handler) ResolveAccount(c *gin.Context) {
	var input resolveAccountInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := h.service.Transfer.ResolveAccount(input.AccountNumber, input.BankCode)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	okResponse(c, "account_name", name)
}

// GetQuote returns a conversion estimate valid for ten seconds; clients
// re-poll while the quote view is open.
func (h *Handler) GetQuote(c *gin.Context) {
	amount := c.Query("amount")
	token := c.Query("token")
	if amount == "" || token == "" {
		newErrorResponse(c, http.StatusBadRequest, "amount and token are required")
		return
	}

	quote, err := h.service.Quote.GenerateQuote(amount, token)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	okResponse(c, "quote", quote)
}

func (h *Handler) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.BindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Transfer.Transfer(c.GetString("wallet"), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrPayoutFailed):
			status = http.StatusBadGateway
		case errors.Is(err, repository.ErrDuplicateReference):
			status = http.StatusConflict
		}
		newErrorResponse(c, status, err.Error())
		return
	}

	okResponse(c, "result", result)
}

func (h *Handler) BatchTransfer(c *gin.Context) {
	var req models.BatchRequest
	if err := c.BindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.service.Transfer.BatchTransfer(c.GetString("wallet"), req, nil)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	okResponse(c, "results", results)
}

func (h *Handler) GetTransactions(c *gin.Context) {
	txs, err := h.service.Transfer.GetTransactions(c.GetString("wallet"))
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	items := make([]map[string]interface{}, 0, len(txs))
	for _, tx := range txs {
		items = append(items, map[string]interface{}{
			"transaction": tx,
			"status":      tx.Status(),
		})
	}

	okResponse(c, "data", items)
}

func (h *Handler) GetPending(c *gin.Context) {
	txs, err := h.service.Transfer.GetPending(c.GetString("wallet"))
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "failed to load pending transactions")
		return
	}

	okResponse(c, "data", txs)
}
