package forms

import (
	"strings"

	"evex/pkg/models"
)

func Feedback(in models.FeedbackInput) (models.FeedbackInput, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	return in, Struct(&in)
}

func FeedbackUpdate(p models.FeedbackUpdate) (models.FeedbackUpdate, error) {
	if p.Comment != nil {
		*p.Comment = strings.TrimSpace(*p.Comment)
	}
	if p.Rating == nil && p.Comment == nil {
		return p, Errors{{Field: "rating", Tag: "required", Message: "Nothing to update"}}
	}
	return p, Struct(&p)
}

func Profile(p models.ProfileUpdate) (models.ProfileUpdate, error) {
	for _, s := range []*string{p.FirstName, p.LastName, p.Email, p.ContactNumber, p.Department} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	return p, Struct(&p)
}

func University(u models.University) (models.University, error) {
	u.Name = strings.TrimSpace(u.Name)
	return u, Struct(&u)
}

func Attendance(req models.MarkAttendanceRequest) (models.MarkAttendanceRequest, error) {
	req.Notes = strings.TrimSpace(req.Notes)
	return req, Struct(&req)
}
