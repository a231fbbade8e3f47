package application

import (
	"net/mail"
	"regexp"
	"strings"
)

const minPasswordLength = 6

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail requires a bare address such as "a@b.com"; display-name forms are rejected.
func validateEmail(v *ValidationError, field, email string) {
	if email == "" {
		v.add(field, "email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		v.add(field, "email is invalid")
	}
}

func validatePhone(v *ValidationError, field, phone string, required bool) {
	if phone == "" {
		if required {
			v.add(field, "phone is required")
		}
		return
	}
	if !phonePattern.MatchString(phone) {
		v.add(field, "phone is invalid")
	}
}

func validateNewPassword(v *ValidationError, password, confirm string) {
	switch {
	case password == "":
		v.add("password", "password is required")
	case len(password) < minPasswordLength:
		v.add("password", "password must be at least 6 characters")
	case password != confirm:
		v.add("confirm_password", "passwords do not match")
	}
}

func requireText(v *ValidationError, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, message)
	}
}
