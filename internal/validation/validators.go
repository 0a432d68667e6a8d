// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	telephoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("le mot de passe doit contenir au moins 8 caractères")
	}
	if len(password) > 128 {
		return fmt.Errorf("le mot de passe ne doit pas dépasser 128 caractères")
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("le mot de passe doit contenir au moins une majuscule")
	}
	if !hasLower {
		return fmt.Errorf("le mot de passe doit contenir au moins une minuscule")
	}
	if !hasDigit {
		return fmt.Errorf("le mot de passe doit contenir au moins un chiffre")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("format d'email invalide")
	}
	if len(email) > 254 {
		return fmt.Errorf("l'email ne doit pas dépasser 254 caractères")
	}
	return nil
}

// ValidateName checks a nom or prenom field. The label names the field
// in the error message.
func ValidateName(label, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("le champ %s est requis", label)
	}
	if len(value) > 100 {
		return fmt.Errorf("le champ %s ne doit pas dépasser 100 caractères", label)
	}
	return nil
}

// ValidateTelephone checks an optional phone number. Empty is accepted.
func ValidateTelephone(telephone string) error {
	if telephone == "" {
		return nil
	}
	if !telephoneRegex.MatchString(telephone) {
		return fmt.Errorf("format de téléphone invalide")
	}
	return nil
}
