package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Formation2026", false},
		{"Exactly Min Length", "Abcdef12", false},
		{"Too Short", "Abc12", true},
		{"Too Long", "A" + strings.Repeat("b", 127) + "1", true},
		{"No Upper", "formation2026", true},
		{"No Lower", "FORMATION2026", true},
		{"No Digit", "FormationCFP", true},
		{"Unicode Characters", "Sénégal2026", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "moussa.fall@cfp.sn", false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateName("nom", "Fall"))
	assert.Error(t, ValidateName("nom", "   "))
	assert.Error(t, ValidateName("prenom", strings.Repeat("a", 101)))

	err := ValidateName("prenom", "")
	assert.Contains(t, err.Error(), "prenom")
}

func TestValidateTelephone(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		telephone string
		wantErr   bool
	}{
		{"Empty Is Optional", "", false},
		{"Local", "77 123 45 67", false},
		{"International", "+221771234567", false},
		{"Letters", "77-ABC-4567", true},
		{"Too Short", "77 12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTelephone(tt.telephone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
