package agenda

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidForm is wrapped by every ValidationError.
var ErrInvalidForm = errors.New("invalid appointment form")

// Form is the raw appointment form as submitted by the browser or API.
type Form struct {
	ClientName string `json:"clientName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"cep"`
	Appliance  string `json:"appliance"`
	Problem    string `json:"problem"`
	Shift      string `json:"shift"`
	Time       string `json:"time"`
}

// ValidationError lists the fields that blocked a submission.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("%v: %s", ErrInvalidForm, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Notice returns the user-facing message for the failed submission.
func (e *ValidationError) Notice() Notice {
	if len(e.Missing) > 0 {
		return NoticeRequiredFields
	}
	return NoticeInvalidFields
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Normalize trims text fields, keeps only digits in phone and postal code
// and defaults the shift to morning.
func (f *Form) Normalize() {
	f.ClientName = strings.TrimSpace(f.ClientName)
	f.Address = strings.TrimSpace(f.Address)
	f.Appliance = strings.TrimSpace(f.Appliance)
	f.Problem = strings.TrimSpace(f.Problem)
	f.Time = strings.TrimSpace(f.Time)
	f.Shift = strings.TrimSpace(f.Shift)
	f.Phone = DigitsOnly(f.Phone)
	f.PostalCode = DigitsOnly(f.PostalCode)
	if f.Shift == "" {
		f.Shift = string(Morning)
	}
}

// Validate requires client name, phone, appliance and time.
// Appliance and shift must come from their fixed sets.
func (f *Form) Validate() error {
	var verr ValidationError

	if f.ClientName == "" {
		verr.Missing = append(verr.Missing, "clientName")
	}
	if f.Phone == "" {
		verr.Missing = append(verr.Missing, "phone")
	}
	if f.Appliance == "" {
		verr.Missing = append(verr.Missing, "appliance")
	} else if !IsKnownAppliance(f.Appliance) {
		verr.Invalid = append(verr.Invalid, "appliance")
	}
	if f.Time == "" {
		verr.Missing = append(verr.Missing, "time")
	}
	if !Shift(f.Shift).Valid() {
		verr.Invalid = append(verr.Invalid, "shift")
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return &verr
	}
	return nil
}

// Draft converts a validated form. Call Normalize and Validate first.
func (f *Form) Draft() Draft {
	return Draft{
		ClientName: f.ClientName,
		Phone:      f.Phone,
		Address:    f.Address,
		PostalCode: f.PostalCode,
		Appliance:  f.Appliance,
		Problem:    f.Problem,
		Shift:      Shift(f.Shift),
		Time:       f.Time,
	}
}
