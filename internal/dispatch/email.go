package dispatch

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fleet-billing-service/internal/models"
)

// EmailBuilder assembles the outbound messages the watchdog dispatches.
// Document templating proper lives outside this service; these bodies are
// deliberately plain.
type EmailBuilder struct {
	OpsMailbox  string
	CompanyName string
}

// OverdueNotice builds the one-shot overdue alert for an invoice. The
// client's assigned agent and the operations mailbox ride along on cc.
func (b EmailBuilder) OverdueNotice(client *models.Client, invoice *models.Invoice, daysOverdue int) Email {
	cc := make([]string, 0, 2)
	if client.AgentEmail != "" {
		cc = append(cc, client.AgentEmail)
	}
	if b.OpsMailbox != "" {
		cc = append(cc, b.OpsMailbox)
	}

	body := fmt.Sprintf(
		`<p>Dear %s,</p>
<p>Invoice <b>%s</b> for %s is overdue by %d day(s). The outstanding balance is %s.</p>
<p>Please arrange payment at your earliest convenience.</p>
<p>%s</p>`,
		client.Name, invoice.DocID, invoice.Description, daysOverdue,
		formatAmount(invoice.BalanceDue), b.CompanyName,
	)

	return Email{
		To:       client.Email,
		Cc:       cc,
		Subject:  fmt.Sprintf("Overdue invoice %s", invoice.DocID),
		HTMLBody: body,
	}
}

// ExpiryNotice builds the contract expiration message.
func (b EmailBuilder) ExpiryNotice(client *models.Client, contract *models.Contract) Email {
	body := fmt.Sprintf(
		`<p>Dear %s,</p>
<p>Your contract <b>%s</b> (%s) reached its term on %s and has been marked expired.</p>
<p>Contact us to renew your coverage.</p>
<p>%s</p>`,
		client.Name, contract.ContractID, contract.ServiceType,
		contract.ExpiryDate, b.CompanyName,
	)

	cc := []string{}
	if b.OpsMailbox != "" {
		cc = append(cc, b.OpsMailbox)
	}

	return Email{
		To:       client.Email,
		Cc:       cc,
		Subject:  fmt.Sprintf("Contract %s has expired", contract.ContractID),
		HTMLBody: body,
	}
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
