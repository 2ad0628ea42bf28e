package utils

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/mailjet/mailjet-apiv3-go/v4"
)

const fromEmail = "receipts@defi-direct.app"

// SendReceipt emails a payout receipt. Best effort: failures are logged and
// never affect the transfer outcome. Mailjet first, SMTP as fallback.
func SendReceipt(to, recipientName, bankName, accountNumber, fiatAmount, reference string) {
	body := receiptBody(recipientName, bankName, accountNumber, fiatAmount, reference)
	subject := "Your DeFi-Direct payout receipt"

	apiKey := os.Getenv("MAILJET_API_KEY")
	secretKey := os.Getenv("MAILJET_SECRET_KEY")
	if apiKey != "" && secretKey != "" {
		mj := mailjet.NewMailjetClient(apiKey, secretKey)
		messages := &mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{
			{
				From:     &mailjet.RecipientV31{Email: fromEmail, Name: "DeFi-Direct"},
				To:       &mailjet.RecipientsV31{{Email: to}},
				Subject:  subject,
				HTMLPart: body,
			},
		}}
		if _, err := mj.SendMailV31(messages); err != nil {
			logrus.Errorf("mailjet receipt send failed: %v", err)
		} else {
			logrus.Infof("receipt sent to %s for %s", to, reference)
		}
		return
	}

	sendReceiptSMTP(to, subject, body, reference)
}

func sendReceiptSMTP(to, subject, body, reference string) {
	host := os.Getenv("SMTP_HOST")
	password := os.Getenv("SMTP_PASSWORD")
	if host == "" || password == "" {
		logrus.Warnf("no mail transport configured, skipping receipt for %s", reference)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, 587, fromEmail, password)
	if err := d.DialAndSend(m); err != nil {
		logrus.Errorf("smtp receipt send failed: %v", err)
	} else {
		logrus.Infof("receipt sent to %s for %s", to, reference)
	}
}

func receiptBody(recipientName, bankName, accountNumber, fiatAmount, reference string) string {
	return fmt.Sprintf(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" border="0" style="max-width:600px;background:#f3f2f0;border-radius:28px;padding:32px;">
    <tr><td>
      <h1 style="margin:0 0 12px 0;font-family:Arial,sans-serif;font-size:28px;color:#111;">Payout sent</h1>
      <p style="margin:0 0 24px 0;font-family:Arial,sans-serif;font-size:16px;color:#222;">Your bank transfer has been completed.</p>
      <table cellpadding="0" cellspacing="0" border="0" style="width:100%%;font-family:Arial,sans-serif;font-size:15px;color:#111;">
        <tr><td style="color:#555;padding:6px 0;">Recipient:</td><td style="font-weight:bold;">%s</td></tr>
        <tr><td style="color:#555;padding:6px 0;">Bank:</td><td style="font-weight:bold;">%s</td></tr>
        <tr><td style="color:#555;padding:6px 0;">Account:</td><td style="font-weight:bold;">%s</td></tr>
        <tr><td style="color:#555;padding:6px 0;">Amount (NGN):</td><td style="font-weight:bold;">%s</td></tr>
        <tr><td style="color:#555;padding:6px 0;">Reference:</td><td style="font-weight:bold;">%s</td></tr>
      </table>
    </td></tr>
  </table>
</body>`, recipientName, bankName, accountNumber, fiatAmount, reference)
}
