package forms

import "strings"

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Strength is the register page's password checklist.
type Strength struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

func CheckPassword(pw string) Strength {
	s := Strength{Length: len(pw) >= 8}
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			s.Uppercase = true
		case r >= 'a' && r <= 'z':
			s.Lowercase = true
		case r >= '0' && r <= '9':
			s.Number = true
		case strings.ContainsRune(specialChars, r):
			s.Special = true
		}
	}
	return s
}

func (s Strength) Strong() bool {
	return s.Length && s.Uppercase && s.Lowercase && s.Number && s.Special
}

// Unmet returns the checklist labels still missing.
func (s Strength) Unmet() []string {
	var out []string
	for _, c := range []struct {
		ok    bool
		label string
	}{
		{s.Length, "8+ characters"},
		{s.Uppercase, "Uppercase letter"},
		{s.Lowercase, "Lowercase letter"},
		{s.Number, "Number"},
		{s.Special, "Special character"},
	} {
		if !c.ok {
			out = append(out, c.label)
		}
	}
	return out
}
