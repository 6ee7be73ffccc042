package email

const (
	subjectSalesAlertFmt      = "[%s] New %s lead: %s (score %d)"
	subjectDeliveryFailureFmt = "CRM delivery failed for submission %s"
)
