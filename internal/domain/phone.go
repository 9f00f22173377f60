package domain

import (
	"regexp"
	"unicode/utf8"
)

// phonePattern accepts E.123-style international numbers: a leading plus,
// then 7 to 15 digits optionally separated by single spaces.
var phonePattern = regexp.MustCompile(`^\+(?:[0-9] ?){6,14}[0-9]$`)

// ValidPhone reports whether number is a well-formed international phone
// number. The empty string is not valid; optional fields are checked only
// when populated.
func ValidPhone(number string) bool {
	return phonePattern.MatchString(number)
}

// Column widths in the workers table. Text fields are checked against
// them here so an overlong value reads as a field error rather than a
// truncation failure at the store.
const (
	maxFullNameLen = 60
	maxPositionLen = 256
)

// ValidateWorker checks the write-time invariants for a worker record:
// required name and position within their column widths, at least one
// contact number, and each populated number well-formed. Returns nil when
// the record is acceptable.
func ValidateWorker(w *Worker) error {
	ve := NewValidationError()

	if w.FullName == "" {
		ve.Add("full_name", "this field is required")
	} else if utf8.RuneCountInString(w.FullName) > maxFullNameLen {
		ve.Add("full_name", "ensure this field has no more than 60 characters")
	}
	if w.Position == "" {
		ve.Add("position", "this field is required")
	} else if utf8.RuneCountInString(w.Position) > maxPositionLen {
		ve.Add("position", "ensure this field has no more than 256 characters")
	}

	if w.WorkNumber == "" && w.PrivateNumber == "" && w.Fax == "" {
		ve.Add("numbers", "at least one phone number is required")
	}

	for field, number := range map[string]string{
		"work_number":    w.WorkNumber,
		"private_number": w.PrivateNumber,
		"fax":            w.Fax,
	} {
		if number != "" && !ValidPhone(number) {
			ve.Add(field, "phone number must be entered in the E.123 format")
		}
	}

	if ve.Empty() {
		return nil
	}
	return ve
}
