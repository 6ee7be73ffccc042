// Package validation is the single gate deciding whether a normalized
// assessment is well-formed enough to be scored and stored.
package validation

import (
	"fmt"
	"slices"
	"sort"

	"intake_backend/internal/assessment/domain"
	"intake_backend/platform/apperr"
	"intake_backend/platform/phone"
	"intake_backend/platform/sanitize"
	"intake_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// CodeBelowMinimumUnits marks the business-rule rejection that routes the
// visitor to the residential pathway instead of showing a field error.
const CodeBelowMinimumUnits = "below_minimum_units"

// Gate validates assessment inputs.
type Gate struct {
	val      *validator.Validator
	minUnits int
}

// NewGate registers the assessment enum tags on val and returns a gate that
// rejects projects below minUnits.
func NewGate(val *validator.Validator, minUnits int) (*Gate, error) {
	enums := map[string][]string{
		"timeline":            domain.Timelines,
		"province":            domain.Provinces,
		"developer_type":      domain.DeveloperTypes,
		"government_programs": domain.GovernmentPrograms,
		"build_canada":        domain.BuildCanadaAnswers,
		"readiness":           domain.ReadinessPhases,
	}
	for tag, allowed := range enums {
		if err := val.RegisterValidation(tag, oneOf(allowed)); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return &Gate{val: val, minUnits: minUnits}, nil
}

func oneOf(allowed []string) playground.Func {
	return func(fl playground.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// Validate checks in and, on success, returns it with the phone in E.164 form.
// Field errors are returned in a stable order.
func (g *Gate) Validate(in domain.AssessmentInput) (domain.ValidatedAssessment, []validator.FieldError) {
	if err := g.val.Struct(in); err != nil {
		errs := validator.FieldErrors(err)
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return domain.ValidatedAssessment{}, errs
	}

	normalized, ok := phone.ToE164(in.Phone)
	if !ok {
		return domain.ValidatedAssessment{}, []validator.FieldError{{Field: "phone", Message: "must be a valid international phone number"}}
	}
	in.Phone = normalized

	return domain.ValidatedAssessment{AssessmentInput: in}, nil
}

// CheckMinimumUnits rejects projects below the B2B threshold.
func (g *Gate) CheckMinimumUnits(v domain.ValidatedAssessment) error {
	if v.ProjectUnitCount >= g.minUnits {
		return nil
	}
	return apperr.BadRequest("Project does not meet minimum requirements").
		WithCode(CodeBelowMinimumUnits).
		WithDetail(fmt.Sprintf("Partnership assessments require at least %d units. Please use our residential inquiry form for smaller projects.", g.minUnits)).
		WithOp("validation.CheckMinimumUnits")
}

// MinUnits returns the configured B2B minimum.
func (g *Gate) MinUnits() int {
	return g.minUnits
}

// ValidationError wraps field errors as a typed validation error.
func ValidationError(errs []validator.FieldError) error {
	return apperr.Validation("Validation failed").WithDetails(errs)
}

// Screen inspects the raw body for script-injection markup before any
// sanitization runs. Keys are reported in sorted order.
func Screen(raw map[string]any) []validator.FieldError {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []validator.FieldError
	for _, key := range keys {
		if containsDangerous(raw[key]) {
			errs = append(errs, validator.FieldError{Field: key, Message: "contains potentially dangerous content"})
		}
	}
	return errs
}

func containsDangerous(value any) bool {
	switch v := value.(type) {
	case string:
		return sanitize.ContainsDangerous(v)
	case []any:
		for _, item := range v {
			if containsDangerous(item) {
				return true
			}
		}
	case map[string]any:
		for _, item := range v {
			if containsDangerous(item) {
				return true
			}
		}
	}
	return false
}
