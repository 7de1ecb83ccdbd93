package models

import (
	"time"

	"github.com/lib/pq"
)

// Visibility scopes who may see a profile at all.
type Visibility string

const (
	VisibilityEveryone     Visibility = "everyone"
	VisibilityOrganization Visibility = "organization"
	VisibilityVerified     Visibility = "verified"
	VisibilityNobody       Visibility = "nobody"
)

// ValidVisibility reports whether the value is a known scope.
func ValidVisibility(v string) bool {
	switch Visibility(v) {
	case VisibilityEveryone, VisibilityOrganization, VisibilityVerified, VisibilityNobody:
		return true
	}
	return false
}

// PrivacySettings are the per-field toggles embedded in a profile.
// Visibility "nobody" overrides every toggle.
type PrivacySettings struct {
	Visibility       Visibility `db:"visibility" json:"visibility"`
	ShowFullName     bool       `db:"show_full_name" json:"show_full_name"`
	ShowAge          bool       `db:"show_age" json:"show_age"`
	ShowProfilePhoto bool       `db:"show_profile_photo" json:"show_profile_photo"`
	ShowOrganization bool       `db:"show_organization" json:"show_organization"`
}

// Profile is the commuter profile, one per user, replaced whole on update.
type Profile struct {
	UserID            string         `db:"user_id" json:"user_id"`
	FullName          string         `db:"full_name" json:"full_name"`
	DateOfBirth       string         `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Age               int            `db:"age" json:"age,omitempty"`
	Gender            string         `db:"gender" json:"gender,omitempty"`
	ProfilePhoto      string         `db:"profile_photo" json:"profile_photo,omitempty"`
	OrganizationType  string         `db:"organization_type" json:"organization_type,omitempty"`
	OrganizationName  string         `db:"organization_name" json:"organization_name,omitempty"`
	OrganizationEmail string         `db:"organization_email" json:"organization_email,omitempty"`
	Department        string         `db:"department" json:"department,omitempty"`
	Designation       string         `db:"designation" json:"designation,omitempty"`
	HomeStation       string         `db:"home_station" json:"home_station"`
	WorkStation       string         `db:"work_station" json:"work_station"`
	CommuteMorning    string         `db:"commute_morning" json:"commute_morning,omitempty"`
	CommuteEvening    string         `db:"commute_evening" json:"commute_evening,omitempty"`
	TravelDays        pq.StringArray `db:"travel_days" json:"travel_days"`
	Bio               string         `db:"bio" json:"bio,omitempty"`
	Interests         pq.StringArray `db:"interests" json:"interests"`
	PrivacySettings
	IsVerified bool      `db:"is_verified" json:"is_verified"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RedactedProfile is the view of a profile another user is allowed to see.
// Masked fields are omitted rather than zeroed so clients can distinguish
// "hidden" from "empty".
type RedactedProfile struct {
	UserID           string         `json:"user_id"`
	FullName         string         `json:"full_name,omitempty"`
	Age              int            `json:"age,omitempty"`
	Gender           string         `json:"gender,omitempty"`
	ProfilePhoto     string         `json:"profile_photo,omitempty"`
	OrganizationType string         `json:"organization_type,omitempty"`
	OrganizationName string         `json:"organization_name,omitempty"`
	Department       string         `json:"department,omitempty"`
	Designation      string         `json:"designation,omitempty"`
	HomeStation      string         `json:"home_station"`
	WorkStation      string         `json:"work_station"`
	CommuteMorning   string         `json:"commute_morning,omitempty"`
	CommuteEvening   string         `json:"commute_evening,omitempty"`
	TravelDays       pq.StringArray `json:"travel_days"`
	Bio              string         `json:"bio,omitempty"`
	Interests        pq.StringArray `json:"interests"`
	IsVerified       bool           `json:"is_verified"`
	CreatedAt        time.Time      `json:"created_at"`
}
