package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commute-service/internal/discovery"
	"commute-service/internal/mocks"
	"commute-service/internal/models"
	"commute-service/internal/repositories"
)

// testProfile is a fully open profile fixture shared by the handler tests.
func testProfile(userID string) models.Profile {
	return models.Profile{
		UserID:      userID,
		FullName:    "Commuter " + userID,
		HomeStation: "Indiranagar",
		WorkStation: "Majestic",
		PrivacySettings: models.PrivacySettings{
			Visibility:       models.VisibilityEveryone,
			ShowFullName:     true,
			ShowAge:          true,
			ShowProfilePhoto: true,
			ShowOrganization: true,
		},
	}
}

// newEngine builds a discovery engine over fresh repository mocks.
func newEngine(profiles *mocks.ProfileRepositoryMock, trips *mocks.TripRepositoryMock,
	connections *mocks.ConnectionRepositoryMock, waves *mocks.WaveRepositoryMock) *discovery.Engine {
	if profiles == nil {
		profiles = new(mocks.ProfileRepositoryMock)
	}
	if trips == nil {
		trips = new(mocks.TripRepositoryMock)
	}
	if connections == nil {
		connections = new(mocks.ConnectionRepositoryMock)
	}
	if waves == nil {
		waves = new(mocks.WaveRepositoryMock)
	}
	return discovery.NewEngine(profiles, trips, connections, waves, 0)
}

func setupProfileRouter(handler *ProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/profile", handler.GetMine)
	r.POST("/profile", handler.Upsert)
	r.GET("/profile/:userId", handler.GetByID)
	return r
}

func TestGetMineMissingProfileRendersNull(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	profiles.On("Get", mock.Anything, "u1").Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())
	profiles.AssertExpectations(t)
}

func TestUpsertProfileRequiresCoreFields(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	body := bytes.NewBufferString(`{"full_name":"  ","home_station":"Indiranagar","work_station":"Majestic"}`)
	req := httptest.NewRequest(http.MethodPost, "/profile", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	profiles.AssertNotCalled(t, "Upsert")
}

func TestUpsertProfileRejectsUnknownStation(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	body := bytes.NewBufferString(`{"full_name":"Asha","home_station":"Atlantis","work_station":"Majestic"}`)
	req := httptest.NewRequest(http.MethodPost, "/profile", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	profiles.AssertNotCalled(t, "Upsert")
}

func TestUpsertProfileDefaultsPrivacy(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	var saved models.Profile
	profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		saved = p
		return p.UserID == "u1"
	})).Return(testProfile("u1"), nil).Once()

	body := bytes.NewBufferString(`{"full_name":"Asha Rao","home_station":"Indiranagar","work_station":"Majestic"}`)
	req := httptest.NewRequest(http.MethodPost, "/profile", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.VisibilityEveryone, saved.Visibility)
	assert.True(t, saved.ShowFullName)
	assert.NotNil(t, saved.TravelDays)
	assert.NotNil(t, saved.Interests)
	profiles.AssertExpectations(t)
}

func TestUpsertProfileDerivesAgeFromDOB(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	dob := time.Now().AddDate(-30, 0, -1).Format("2006-01-02")
	var saved models.Profile
	profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		saved = p
		return true
	})).Return(testProfile("u1"), nil).Once()

	body := bytes.NewBufferString(`{"full_name":"Asha Rao","home_station":"Indiranagar","work_station":"Majestic","date_of_birth":"` + dob + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/profile", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, saved.Age)
}

func TestAgeFromBirthdayBoundaries(t *testing.T) {
	dob := time.Date(2000, time.May, 5, 0, 0, 0, 0, time.UTC)

	// born in a leap year, evaluated in a non-leap year: day-of-year
	// arithmetic would miss the birthday by one day
	assert.Equal(t, 1, ageFrom(dob, time.Date(2001, time.May, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, ageFrom(dob, time.Date(2001, time.May, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, ageFrom(dob, time.Date(2026, time.May, 5, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25, ageFrom(dob, time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)))

	// Feb 29 birthdays roll over on Mar 1 in non-leap years
	leapDOB := time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, leapAge(leapDOB, 2001, time.February, 28))
	assert.Equal(t, 1, leapAge(leapDOB, 2001, time.March, 1))
}

func leapAge(dob time.Time, year int, month time.Month, day int) int {
	return ageFrom(dob, time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func TestGetByIDHiddenProfileIs404(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	hidden := testProfile("u2")
	hidden.Visibility = models.VisibilityNobody
	profiles.On("Get", mock.Anything, "u2").Return(hidden, nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/profile/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_visible", resp["error_kind"])
}

func TestGetByIDRedactsMaskedFields(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profiles, newEngine(profiles, nil, nil, nil), nil)
	router := setupProfileRouter(handler)

	subject := testProfile("u2")
	subject.FullName = "Asha Rao"
	subject.ShowFullName = false
	profiles.On("Get", mock.Anything, "u2").Return(subject, nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/profile/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RedactedProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "A. R.", resp.FullName)
}
