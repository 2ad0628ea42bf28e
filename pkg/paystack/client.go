package paystack

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Client talks to the Paystack REST API with the platform secret key.
type Client struct {
	baseURL   string
	secretKey string
	http      *resty.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      resty.New().SetTimeout(30 * time.Second),
	}
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Slug string `json:"slug"`
}

// envelope is Paystack's common response wrapper.
type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type banksResponse struct {
	envelope
	Data []Bank `json:"data"`
}

type resolveResponse struct {
	envelope
	Data struct {
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
	} `json:"data"`
}

type recipientResponse struct {
	envelope
	Data struct {
		RecipientCode string `json:"recipient_code"`
	} `json:"data"`
}

type transferResponse struct {
	envelope
	Data struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// APIError carries Paystack's own message so callers can surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("paystack: %s", e.Message)
	}
	return fmt.Sprintf("paystack: request failed with status %d", e.StatusCode)
}

func (c *Client) ListBanks() ([]Bank, error) {
	var out banksResponse
	resp, err := c.http.R().
		SetAuthToken(c.secretKey).
		SetQueryParam("currency", "NGN").
		SetResult(&out).
		SetError(&out).
		Get(c.baseURL + "/bank")
	if err != nil {
		return nil, errors.Wrap(err, "list banks request failed")
	}
	if resp.IsError() || !out.Status {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: out.Message}
	}
	return out.Data, nil
}

// ResolveAccount verifies an account number against a bank and returns the
// registered account name.
func (c *Client) ResolveAccount(accountNumber, bankCode string) (string, error) {
	var out resolveResponse
	resp, err := c.http.R().
		SetAuthToken(c.secretKey).
		SetQueryParam("account_number", accountNumber).
		SetQueryParam("bank_code", bankCode).
		SetResult(&out).
		SetError(&out).
		Get(c.baseURL + "/bank/resolve")
	if err != nil {
		return "", errors.Wrap(err, "resolve account request failed")
	}
	if resp.IsError() || !out.Status {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: out.Message}
	}
	return out.Data.AccountName, nil
}

func (c *Client) createRecipient(name, accountNumber, bankCode string) (string, error) {
	var out recipientResponse
	resp, err := c.http.R().
		SetAuthToken(c.secretKey).
		SetBody(map[string]string{
			"type":           "nuban",
			"name":           name,
			"account_number": accountNumber,
			"bank_code":      bankCode,
			"currency":       "NGN",
		}).
		SetResult(&out).
		SetError(&out).
		Post(c.baseURL + "/transferrecipient")
	if err != nil {
		return "", errors.Wrap(err, "create recipient request failed")
	}
	if resp.IsError() || !out.Status {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: out.Message}
	}
	return out.Data.RecipientCode, nil
}

func (c *Client) initiateTransfer(amountKobo int64, recipientCode, reason, reference string) (string, error) {
	var out transferResponse
	resp, err := c.http.R().
		SetAuthToken(c.secretKey).
		SetBody(map[string]interface{}{
			"source":    "balance",
			"amount":    amountKobo,
			"recipient": recipientCode,
			"reason":    reason,
			"reference": reference,
		}).
		SetResult(&out).
		SetError(&out).
		Post(c.baseURL + "/transfer")
	if err != nil {
		return "", errors.Wrap(err, "initiate transfer request failed")
	}
	if resp.IsError() || !out.Status {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: out.Message}
	}
	return out.Data.Reference, nil
}

// Payout creates a named transfer recipient and moves amountKobo from the
// platform balance to it. Returns the provider transfer reference.
func (c *Client) Payout(name, accountNumber, bankCode string, amountKobo int64, reference string) (string, error) {
	recipientCode, err := c.createRecipient(name, accountNumber, bankCode)
	if err != nil {
		return "", err
	}
	return c.initiateTransfer(amountKobo, recipientCode, "DeFi-Direct payout", reference)
}
