package validation

import (
	"errors"
	"strings"
	"testing"

	"intake_backend/internal/assessment/domain"
	"intake_backend/platform/apperr"
	"intake_backend/platform/validator"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(validator.New(), 10)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return gate
}

func validInput() domain.AssessmentInput {
	return domain.AssessmentInput{
		FirstName:            "Jane",
		LastName:             "O'Neil",
		Email:                "jane@example.com",
		Phone:                "+2975691234",
		Company:              "Acme Homes",
		ProjectUnitCount:     120,
		DecisionTimeline:     domain.TimelineShortTerm,
		ConstructionProvince: domain.ProvinceManitoba,
		DeveloperType:        domain.DeveloperCommercial,
		GovernmentPrograms:   domain.GovernmentNotParticipating,
		BuildCanadaEligible:  domain.BuildCanadaNo,
		ConsentMarketing:     true,
		AgeVerified:          true,
	}
}

func hasField(errs []validator.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_Accepts(t *testing.T) {
	v, errs := newGate(t).Validate(validInput())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if v.Phone != "+2975691234" {
		t.Fatalf("international phone must be returned byte-for-byte, got %q", v.Phone)
	}
}

func TestValidate_DomesticPhoneBecomesE164(t *testing.T) {
	in := validInput()
	in.Phone = "(650) 253-0000"
	v, errs := newGate(t).Validate(in)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if v.Phone != "+16502530000" {
		t.Fatalf("expected E.164 phone, got %q", v.Phone)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AssessmentInput)
		field  string
	}{
		{name: "missing first name", mutate: func(in *domain.AssessmentInput) { in.FirstName = "" }, field: "firstName"},
		{name: "digits in last name", mutate: func(in *domain.AssessmentInput) { in.LastName = "Sm1th" }, field: "lastName"},
		{name: "bad email", mutate: func(in *domain.AssessmentInput) { in.Email = "jane@" }, field: "email"},
		{name: "bad phone", mutate: func(in *domain.AssessmentInput) { in.Phone = "12" }, field: "phone"},
		{name: "short company", mutate: func(in *domain.AssessmentInput) { in.Company = "A" }, field: "company"},
		{name: "too many units", mutate: func(in *domain.AssessmentInput) { in.ProjectUnitCount = 10001 }, field: "projectUnitCount"},
		{name: "timeline case mismatch", mutate: func(in *domain.AssessmentInput) { in.DecisionTimeline = "immediate (0-3 months)" }, field: "decisionTimeline"},
		{name: "unknown province", mutate: func(in *domain.AssessmentInput) { in.ConstructionProvince = "Texas" }, field: "constructionProvince"},
		{name: "unknown developer", mutate: func(in *domain.AssessmentInput) { in.DeveloperType = "Private Developer" }, field: "developerType"},
		{name: "legacy government label", mutate: func(in *domain.AssessmentInput) { in.GovernmentPrograms = "Very interested" }, field: "governmentPrograms"},
		{name: "long description", mutate: func(in *domain.AssessmentInput) { in.ProjectDescription = strings.Repeat("x", 1001) }, field: "projectDescription"},
		{name: "unknown readiness", mutate: func(in *domain.AssessmentInput) { in.Readiness = "soon" }, field: "readiness"},
		{name: "missing marketing consent", mutate: func(in *domain.AssessmentInput) { in.ConsentMarketing = false }, field: "consentMarketing"},
		{name: "missing age verification", mutate: func(in *domain.AssessmentInput) { in.AgeVerified = false }, field: "ageVerified"},
	}

	gate := newGate(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, errs := gate.Validate(in)
			if !hasField(errs, tc.field) {
				t.Fatalf("expected error on %s, got %+v", tc.field, errs)
			}
		})
	}
}

func TestValidate_SMSConsentOptional(t *testing.T) {
	in := validInput()
	in.ConsentSMS = false
	if _, errs := newGate(t).Validate(in); len(errs) != 0 {
		t.Fatalf("sms consent must be optional, got %+v", errs)
	}
}

func TestCheckMinimumUnits(t *testing.T) {
	gate := newGate(t)

	ok := domain.ValidatedAssessment{AssessmentInput: validInput()}
	ok.ProjectUnitCount = 10
	if err := gate.CheckMinimumUnits(ok); err != nil {
		t.Fatalf("10 units should pass, got %v", err)
	}

	small := ok
	small.ProjectUnitCount = 9
	err := gate.CheckMinimumUnits(small)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != CodeBelowMinimumUnits || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if appErr.Detail == "" {
		t.Fatalf("expected redirect guidance in detail")
	}
}

func TestScreen(t *testing.T) {
	raw := map[string]any{
		"firstName":          "Jane",
		"projectDescription": "<script>alert(1)</script>",
		"tags":               []any{"ok", "javascript:void(0)"},
		"unitCount":          50.0,
	}
	errs := Screen(raw)
	if len(errs) != 2 {
		t.Fatalf("expected 2 flagged fields, got %+v", errs)
	}
	if errs[0].Field != "projectDescription" || errs[1].Field != "tags" {
		t.Fatalf("unexpected order %+v", errs)
	}

	if errs := Screen(map[string]any{"firstName": "Jane"}); len(errs) != 0 {
		t.Fatalf("clean body flagged: %+v", errs)
	}
}
