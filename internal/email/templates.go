package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type salesAlertEmailData struct {
	baseEmailData
	SalesAlert
	TagList string
}

type deliveryFailureEmailData struct {
	baseEmailData
	DeliveryFailure
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderSalesAlert(alert SalesAlert) (string, error) {
	return renderEmailTemplate("sales_alert.html", salesAlertEmailData{
		baseEmailData: baseEmailData{
			Title:      "New priority lead",
			Heading:    fmt.Sprintf("%s lead from %s", strings.ToUpper(alert.Tier), alert.Company),
			Subheading: fmt.Sprintf("Follow up within %s", alert.ResponseTime),
		},
		SalesAlert: alert,
		TagList:    strings.Join(alert.Tags, ", "),
	})
}

func renderDeliveryFailure(failure DeliveryFailure) (string, error) {
	return renderEmailTemplate("delivery_failure.html", deliveryFailureEmailData{
		baseEmailData: baseEmailData{
			Title:   "CRM delivery failed",
			Heading: "A lead did not reach the CRM",
		},
		DeliveryFailure: failure,
	})
}
