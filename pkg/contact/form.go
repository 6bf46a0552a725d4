// Package contact validates request-access submissions and relays them to
// the form delivery service.
package contact

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Form is a visitor's request-access submission.
type Form struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Country             string `json:"country"`
	Sports              string `json:"sports"`
	HobbiesAndInterests string `json:"hobbiesAndInterests"`
	Business            string `json:"business"`
	LastTrips           string `json:"lastTrips"`
	Comments            string `json:"comments"`
}

// FieldError reports one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormErrors lists every invalid field of a submission.
type FormErrors []FieldError

func (e FormErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "contact: invalid form: " + strings.Join(parts, "; ")
}

type rule struct {
	field    string
	label    string
	min, max int
	value    func(Form) string
	// plural labels read "are required" rather than "is required"
	plural bool
}

var rules = []rule{
	{field: "name", label: "Name", min: 2, max: 100, value: func(f Form) string { return f.Name }},
	{field: "country", label: "Country", min: 2, max: 100, value: func(f Form) string { return f.Country }},
	{field: "sports", label: "Sports", min: 1, max: 500, value: func(f Form) string { return f.Sports }},
	{field: "hobbiesAndInterests", label: "Hobbies and interests", min: 1, max: 500, value: func(f Form) string { return f.HobbiesAndInterests }},
	{field: "business", label: "Business", min: 1, max: 500, value: func(f Form) string { return f.Business }},
	{field: "lastTrips", label: "Last trips", min: 1, max: 500, value: func(f Form) string { return f.LastTrips }},
	{field: "comments", label: "Comments", min: 10, max: 1000, value: func(f Form) string { return f.Comments }, plural: true},
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:                strings.TrimSpace(f.Name),
		Email:               strings.TrimSpace(f.Email),
		Country:             strings.TrimSpace(f.Country),
		Sports:              strings.TrimSpace(f.Sports),
		HobbiesAndInterests: strings.TrimSpace(f.HobbiesAndInterests),
		Business:            strings.TrimSpace(f.Business),
		LastTrips:           strings.TrimSpace(f.LastTrips),
		Comments:            strings.TrimSpace(f.Comments),
	}
}

// Validate returns FormErrors in field order, or nil when the form is
// acceptable. Lengths count characters, not bytes.
func (f Form) Validate() error {
	var errs FormErrors
	for i, r := range rules {
		if i == 1 {
			if msg := emailMessage(f.Email); msg != "" {
				errs = append(errs, FieldError{Field: "email", Message: msg})
			}
		}
		if msg := r.check(r.value(f)); msg != "" {
			errs = append(errs, FieldError{Field: r.field, Message: msg})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r rule) check(value string) string {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		if r.plural {
			return r.label + " are required"
		}
		return r.label + " is required"
	case n < r.min:
		return fmt.Sprintf("%s must be at least %d characters", r.label, r.min)
	case n > r.max:
		return fmt.Sprintf("%s must be less than %d characters", r.label, r.max)
	}
	return ""
}

func emailMessage(value string) string {
	if value == "" {
		return "Email is required"
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		return "Please enter a valid email address"
	}
	return ""
}
