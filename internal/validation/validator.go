// Package validation checks and normalizes inbound record payloads.
//
// Validation is pure: a payload either becomes a normalized draft or a list
// of field errors enumerating every violation, never just the first one.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
)

const (
	// MaxNameLen caps contact name length.
	MaxNameLen = 120
	// MaxTitleLen caps job title and company name length.
	MaxTitleLen = 200
	// MaxTextLen caps requirements and description length.
	MaxTextLen = 5000
	// MaxSkills caps the skill array item count.
	MaxSkills = 20
	// MaxSkillLen caps a single skill string.
	MaxSkillLen = 40
	// MaxTags caps the tag array item count.
	MaxTags = 10
	// MaxTagLen caps a single tag string.
	MaxTagLen = 30
)

// Currencies is the closed allow-list for salary currency codes. Unknown
// codes are rejected, never coerced.
var Currencies = []string{"MYR", "SGD", "USD", "EUR", "GBP", "AUD", "JPY", "INR"}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{5,19}$`)

// FieldError reports one offending field with a human-readable reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ContactDraft is the untrusted contact section of a create payload.
type ContactDraft struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
	Organization string `json:"organization" validate:"max=200"`
}

// JobDraft is the untrusted job section of a create payload.
type JobDraft struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"required,max=200"`
	SalaryMin    *int     `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax    *int     `json:"salary_max" validate:"omitempty,gte=0"`
	Currency     string   `json:"currency" validate:"omitempty,currency_code"`
	Requirements string   `json:"requirements" validate:"max=5000"`
	Description  string   `json:"description" validate:"max=5000"`
	Skills       []string `json:"skills" validate:"max=20,dive,required,max=40"`
	Tags         []string `json:"tags" validate:"max=10,dive,required,max=30"`
}

// Draft is the full untrusted create payload for either record flavor.
type Draft struct {
	Contact ContactDraft `json:"contact" validate:"required"`
	Job     JobDraft     `json:"job" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json names so errors match the wire payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		for _, c := range Currencies {
			if code == c {
				return true
			}
		}
		return false
	})

	return v
}

// ValidateDraft normalizes and validates a create payload. On success the
// returned draft has control bytes stripped, whitespace trimmed, phone
// normalized, and currency defaulted to MYR. On failure every offending
// field is reported.
func ValidateDraft(d Draft) (Draft, []FieldError) {
	d = normalize(d)

	var errs []FieldError
	if err := validate.Struct(d); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return d, []FieldError{{Field: "", Reason: err.Error()}}
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: fieldPath(fe), Reason: reason(fe)})
		}
	}

	// Cross-field rule the tag grammar can't express.
	if d.Job.SalaryMin != nil && d.Job.SalaryMax != nil && *d.Job.SalaryMin > *d.Job.SalaryMax {
		errs = append(errs, FieldError{
			Field:  "job.salary_min",
			Reason: fmt.Sprintf("salary_min (%d) must not exceed salary_max (%d)", *d.Job.SalaryMin, *d.Job.SalaryMax),
		})
	}

	if len(errs) > 0 {
		return d, errs
	}
	return d, nil
}

// ToRecordFields copies the validated draft into record sections.
func (d Draft) ToRecordFields() (model.Contact, model.Job) {
	contact := model.Contact{
		Name:         d.Contact.Name,
		Email:        d.Contact.Email,
		Phone:        d.Contact.Phone,
		Organization: d.Contact.Organization,
	}
	job := model.Job{
		Title:        d.Job.Title,
		Company:      d.Job.Company,
		SalaryMin:    d.Job.SalaryMin,
		SalaryMax:    d.Job.SalaryMax,
		Currency:     d.Job.Currency,
		Requirements: d.Job.Requirements,
		Description:  d.Job.Description,
		Skills:       d.Job.Skills,
		Tags:         d.Job.Tags,
	}
	return contact, job
}

func normalize(d Draft) Draft {
	d.Contact.Name = cleanLine(d.Contact.Name)
	d.Contact.Email = cleanLine(d.Contact.Email)
	d.Contact.Phone = normalizePhone(d.Contact.Phone)
	d.Contact.Organization = cleanLine(d.Contact.Organization)

	d.Job.Title = cleanLine(d.Job.Title)
	d.Job.Company = cleanLine(d.Job.Company)
	d.Job.Requirements = cleanText(d.Job.Requirements)
	d.Job.Description = cleanText(d.Job.Description)
	if d.Job.Currency == "" {
		d.Job.Currency = "MYR"
	}
	for i, s := range d.Job.Skills {
		d.Job.Skills[i] = cleanLine(s)
	}
	for i, t := range d.Job.Tags {
		d.Job.Tags[i] = cleanLine(t)
	}
	return d
}

// cleanLine strips every control byte from a single-line field.
func cleanLine(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s))
}

// cleanText keeps newlines and tabs but drops the rest of the control range.
func cleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s))
}

// normalizePhone keeps a leading plus and the dial characters.
func normalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == ' ', r == '-', r == '(', r == ')', r == '.':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func fieldPath(fe validator.FieldError) string {
	// Namespace looks like "Draft.contact.email" after the tag name func.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "currency_code":
		return fmt.Sprintf("must be one of %s", strings.Join(Currencies, ", "))
	case "gte":
		return "must not be negative"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
