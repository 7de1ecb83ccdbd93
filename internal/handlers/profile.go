package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"commute-service/internal/discovery"
	"commute-service/internal/middleware"
	"commute-service/internal/models"
	"commute-service/internal/repositories"
	"commute-service/internal/stations"
	"commute-service/internal/telemetry"
)

// ProfileHandler manages the caller's profile document and redacted views
// of other commuters' profiles.
type ProfileHandler struct {
	profiles repositories.ProfileRepository
	engine   *discovery.Engine
	emitter  *telemetry.AuditEmitter
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles repositories.ProfileRepository, engine *discovery.Engine, emitter *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, engine: engine, emitter: emitter}
}

type commuteTimesRequest struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

type privacyRequest struct {
	Visibility       string `json:"visibility"`
	ShowFullName     *bool  `json:"show_full_name"`
	ShowAge          *bool  `json:"show_age"`
	ShowProfilePhoto *bool  `json:"show_profile_photo"`
	ShowOrganization *bool  `json:"show_organization"`
}

type profileRequest struct {
	FullName          string               `json:"full_name"`
	DateOfBirth       string               `json:"date_of_birth"`
	Age               int                  `json:"age"`
	Gender            string               `json:"gender"`
	ProfilePhoto      string               `json:"profile_photo"`
	OrganizationType  string               `json:"organization_type"`
	OrganizationName  string               `json:"organization_name"`
	OrganizationEmail string               `json:"organization_email"`
	Department        string               `json:"department"`
	Designation       string               `json:"designation"`
	HomeStation       string               `json:"home_station"`
	WorkStation       string               `json:"work_station"`
	CommuteTimes      commuteTimesRequest  `json:"commute_times"`
	TravelDays        []string             `json:"travel_days"`
	Bio               string               `json:"bio"`
	Interests         []string             `json:"interests"`
	PrivacySettings   *privacyRequest      `json:"privacy_settings"`
	IsVerified        bool                 `json:"is_verified"`
}

// GetMine returns the caller's own profile, unredacted. A missing profile
// renders as null so clients can detect incomplete onboarding.
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Upsert replaces the caller's whole profile document.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" || req.HomeStation == "" || req.WorkStation == "" {
		fail(c, http.StatusBadRequest, "validation", "full_name, home_station and work_station are required")
		return
	}
	if !stations.StationExists(req.HomeStation) || !stations.StationExists(req.WorkStation) {
		fail(c, http.StatusBadRequest, "validation", "unknown station")
		return
	}

	profile := models.Profile{
		UserID:            userID,
		FullName:          req.FullName,
		DateOfBirth:       req.DateOfBirth,
		Age:               req.Age,
		Gender:            req.Gender,
		ProfilePhoto:      req.ProfilePhoto,
		OrganizationType:  req.OrganizationType,
		OrganizationName:  req.OrganizationName,
		OrganizationEmail: req.OrganizationEmail,
		Department:        req.Department,
		Designation:       req.Designation,
		HomeStation:       req.HomeStation,
		WorkStation:       req.WorkStation,
		CommuteMorning:    req.CommuteTimes.Morning,
		CommuteEvening:    req.CommuteTimes.Evening,
		TravelDays:        pq.StringArray(req.TravelDays),
		Bio:               req.Bio,
		Interests:         pq.StringArray(req.Interests),
		IsVerified:        req.IsVerified,
		PrivacySettings:   privacyFromRequest(req.PrivacySettings),
	}
	if profile.Age == 0 && profile.DateOfBirth != "" {
		if dob, err := time.Parse("2006-01-02", profile.DateOfBirth); err == nil {
			profile.Age = ageFrom(dob, time.Now())
		}
	}
	if profile.TravelDays == nil {
		profile.TravelDays = pq.StringArray{}
	}
	if profile.Interests == nil {
		profile.Interests = pq.StringArray{}
	}

	saved, err := h.profiles.Upsert(c.Request.Context(), profile)
	if err != nil {
		failErr(c, err)
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "profile updated", requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, saved)
}

// GetByID returns another commuter's profile as the caller may see it.
func (h *ProfileHandler) GetByID(c *gin.Context) {
	viewerID := c.GetString(middleware.UserIDKey)
	subjectID := c.Param("userId")

	view, err := h.engine.ViewProfile(c.Request.Context(), viewerID, subjectID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func privacyFromRequest(req *privacyRequest) models.PrivacySettings {
	out := models.PrivacySettings{
		Visibility:       models.VisibilityEveryone,
		ShowFullName:     true,
		ShowAge:          true,
		ShowProfilePhoto: true,
		ShowOrganization: true,
	}
	if req == nil {
		return out
	}
	if models.ValidVisibility(req.Visibility) {
		out.Visibility = models.Visibility(req.Visibility)
	}
	if req.ShowFullName != nil {
		out.ShowFullName = *req.ShowFullName
	}
	if req.ShowAge != nil {
		out.ShowAge = *req.ShowAge
	}
	if req.ShowProfilePhoto != nil {
		out.ShowProfilePhoto = *req.ShowProfilePhoto
	}
	if req.ShowOrganization != nil {
		out.ShowOrganization = *req.ShowOrganization
	}
	return out
}

func ageFrom(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	// compare calendar month and day, not day-of-year: the latter shifts
	// across leap years and misses birthdays by one day
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
