package forms

import (
	"errors"
	"strings"

	"evex/pkg/models"
)

// Categories offered by the create-event form.
var Categories = []string{
	"Technology",
	"Business",
	"Cultural",
	"Sports",
	"Workshop",
	"Conference",
	"Networking",
	"Seminar",
	"Career Fair",
	"Hackathon",
}

// Event trims and validates a create-event body. Missing required fields
// are reported together in a leading "form" entry.
func Event(in models.EventInput) (models.EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = strings.TrimSpace(in.Tags)
	if in.Status == "" {
		in.Status = models.EventDraft
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityUniversity
	}
	if in.Visibility != models.VisibilityInterUniversity {
		in.AllowedUniversities = []int{}
	}

	err := Struct(&in)
	var errs Errors
	if !errors.As(err, &errs) {
		return in, err
	}
	if missing := errs.Missing(); len(missing) > 0 {
		summary := FieldError{
			Field:   "form",
			Tag:     "required",
			Message: "Please fill in all required fields (" + strings.Join(missing, ", ") + ").",
		}
		errs = append(Errors{summary}, errs...)
	}
	return in, errs
}
