package email

import "context"

// SalesAlert summarizes a high-priority lead for the sales inbox.
type SalesAlert struct {
	SubmissionID string
	FullName     string
	Email        string
	Company      string
	Province     string
	Units        int
	Score        int
	Tier         string
	ResponseTime string
	Tags         []string
}

// DeliveryFailure reports a lead that did not reach the CRM.
type DeliveryFailure struct {
	SubmissionID string
	Target       string
	Tier         string
	Status       int
	Error        string
}

type Sender interface {
	SendSalesAlert(ctx context.Context, toEmail string, alert SalesAlert) error
	SendDeliveryFailureAlert(ctx context.Context, toEmail string, failure DeliveryFailure) error
}

type NoopSender struct{}

func (NoopSender) SendSalesAlert(context.Context, string, SalesAlert) error { return nil }

func (NoopSender) SendDeliveryFailureAlert(context.Context, string, DeliveryFailure) error {
	return nil
}
