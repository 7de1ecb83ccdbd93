package privacy

import (
	"errors"
	"strings"

	"commute-service/internal/models"
)

// ErrNotVisible means the subject's privacy settings hide the profile from
// the viewer entirely.
var ErrNotVisible = errors.New("profile not visible")

// Visible applies the scope rules only, in order: nobody, organization,
// verified. The owner can always see their own profile. viewerProfile may be
// nil when the viewer has not completed onboarding.
func Visible(viewerID string, viewerProfile *models.Profile, subject models.Profile) bool {
	if viewerID == subject.UserID {
		return true
	}
	switch subject.Visibility {
	case models.VisibilityNobody:
		return false
	case models.VisibilityOrganization:
		// case-sensitive exact match on organization name
		if viewerProfile == nil || viewerProfile.OrganizationName != subject.OrganizationName {
			return false
		}
	case models.VisibilityVerified:
		if viewerProfile == nil || !viewerProfile.IsVerified {
			return false
		}
	}
	return true
}

// View returns the subject's profile as the viewer is allowed to see it,
// or ErrNotVisible. The owner gets an unmasked view.
func View(viewerID string, viewerProfile *models.Profile, subject models.Profile) (models.RedactedProfile, error) {
	if !Visible(viewerID, viewerProfile, subject) {
		return models.RedactedProfile{}, ErrNotVisible
	}

	out := models.RedactedProfile{
		UserID:           subject.UserID,
		FullName:         subject.FullName,
		Age:              subject.Age,
		Gender:           subject.Gender,
		ProfilePhoto:     subject.ProfilePhoto,
		OrganizationType: subject.OrganizationType,
		OrganizationName: subject.OrganizationName,
		Department:       subject.Department,
		Designation:      subject.Designation,
		HomeStation:      subject.HomeStation,
		WorkStation:      subject.WorkStation,
		CommuteMorning:   subject.CommuteMorning,
		CommuteEvening:   subject.CommuteEvening,
		TravelDays:       subject.TravelDays,
		Bio:              subject.Bio,
		Interests:        subject.Interests,
		IsVerified:       subject.IsVerified,
		CreatedAt:        subject.CreatedAt,
	}
	if viewerID == subject.UserID {
		return out, nil
	}

	if !subject.ShowFullName {
		out.FullName = Initials(subject.FullName)
	}
	if !subject.ShowAge {
		out.Age = 0
	}
	if !subject.ShowProfilePhoto {
		out.ProfilePhoto = ""
	}
	if !subject.ShowOrganization {
		out.OrganizationType = ""
		out.OrganizationName = ""
		out.Department = ""
		out.Designation = ""
	}
	return out, nil
}

// Initials masks a name down to its initial letters ("Asha Rao" -> "A. R.").
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, string([]rune(f)[0])+".")
	}
	return strings.Join(parts, " ")
}
