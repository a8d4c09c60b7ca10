package feedback

import (
	"net/mail"
	"strings"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/room"
)

// Participant carries the identity details collected in the first wizard
// step. Email and phone are optional unless the room requires them.
type Participant struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field.
func (p Participant) Trimmed() Participant {
	return Participant{
		Name:       strings.TrimSpace(p.Name),
		Department: strings.TrimSpace(p.Department),
		Email:      strings.TrimSpace(p.Email),
		Phone:      strings.TrimSpace(p.Phone),
	}
}

// ValidateParticipant checks participant details against the room's field
// configuration: required enabled fields must be present, and a provided
// email must parse.
func ValidateParticipant(p Participant, fields room.ParticipantFields) error {
	p = p.Trimmed()

	checks := []struct {
		field room.FieldConfig
		value string
		name  string
	}{
		{fields.Name, p.Name, "name"},
		{fields.Department, p.Department, "department"},
		{fields.Email, p.Email, "email"},
		{fields.Phone, p.Phone, "phone"},
	}
	for _, check := range checks {
		if check.field.Enabled && check.field.Required && check.value == "" {
			return apperrors.WithMetadata(apperrors.CodeParticipantFieldMissing, "required participant field is empty", map[string]string{
				"field": check.name,
			})
		}
	}

	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return apperrors.Wrap(apperrors.CodeParticipantEmailInvalid, "participant email is malformed", err)
		}
	}
	return nil
}
