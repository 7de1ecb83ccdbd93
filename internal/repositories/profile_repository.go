package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"commute-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `user_id, full_name, date_of_birth, age, gender, profile_photo,
    organization_type, organization_name, organization_email, department, designation,
    home_station, work_station, commute_morning, commute_evening, travel_days, bio,
    interests, visibility, show_full_name, show_age, show_profile_photo,
    show_organization, is_verified, created_at, updated_at`

// ProfileRepository abstracts commuter profile persistence.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile models.Profile) (models.Profile, error)
	Get(ctx context.Context, userID string) (models.Profile, error)
	ListOthers(ctx context.Context, excludeUserID string) ([]models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Upsert replaces the whole profile document for the owner. Partial merges
// happen in the caller, never here.
func (r *ProfileRepo) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	var out models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (
            user_id, full_name, date_of_birth, age, gender, profile_photo,
            organization_type, organization_name, organization_email, department, designation,
            home_station, work_station, commute_morning, commute_evening, travel_days, bio,
            interests, visibility, show_full_name, show_age, show_profile_photo,
            show_organization, is_verified
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
        ON CONFLICT (user_id) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            date_of_birth = EXCLUDED.date_of_birth,
            age = EXCLUDED.age,
            gender = EXCLUDED.gender,
            profile_photo = EXCLUDED.profile_photo,
            organization_type = EXCLUDED.organization_type,
            organization_name = EXCLUDED.organization_name,
            organization_email = EXCLUDED.organization_email,
            department = EXCLUDED.department,
            designation = EXCLUDED.designation,
            home_station = EXCLUDED.home_station,
            work_station = EXCLUDED.work_station,
            commute_morning = EXCLUDED.commute_morning,
            commute_evening = EXCLUDED.commute_evening,
            travel_days = EXCLUDED.travel_days,
            bio = EXCLUDED.bio,
            interests = EXCLUDED.interests,
            visibility = EXCLUDED.visibility,
            show_full_name = EXCLUDED.show_full_name,
            show_age = EXCLUDED.show_age,
            show_profile_photo = EXCLUDED.show_profile_photo,
            show_organization = EXCLUDED.show_organization,
            is_verified = EXCLUDED.is_verified,
            updated_at = NOW()
        RETURNING `+profileColumns,
		p.UserID, p.FullName, p.DateOfBirth, p.Age, p.Gender, p.ProfilePhoto,
		p.OrganizationType, p.OrganizationName, p.OrganizationEmail, p.Department, p.Designation,
		p.HomeStation, p.WorkStation, p.CommuteMorning, p.CommuteEvening, p.TravelDays, p.Bio,
		p.Interests, p.Visibility, p.ShowFullName, p.ShowAge, p.ShowProfilePhoto,
		p.ShowOrganization, p.IsVerified).StructScan(&out)
	return out, err
}

// Get fetches the profile for a user.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// ListOthers returns every profile except the excluded user's, newest first.
func (r *ProfileRepo) ListOthers(ctx context.Context, excludeUserID string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id <> $1 ORDER BY created_at DESC, user_id ASC`,
		excludeUserID)
	return profiles, err
}
