package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commute-service/internal/mocks"
	"commute-service/internal/models"
	"commute-service/internal/repositories"
)

func setupTripRouter(handler *TripHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.POST("/trips", handler.Start)
	r.PUT("/trips/:id", handler.Update)
	r.GET("/trips", handler.List)
	return r
}

func TestStartTripSuccess(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	handler := NewTripHandler(trips)
	router := setupTripRouter(handler)

	trips.On("Start", mock.Anything, "u1", "Indiranagar", "Majestic", "purple").Return(models.Trip{
		ID: "t1", UserID: "u1", FromStation: "Indiranagar", ToStation: "Majestic", Line: "purple", Active: true,
	}, nil).Once()

	body := bytes.NewBufferString(`{"from_station":"Indiranagar","to_station":"Majestic","line":"purple"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Active)
	trips.AssertExpectations(t)
}

func TestStartTripUnknownLine(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	body := bytes.NewBufferString(`{"from_station":"Indiranagar","to_station":"Majestic","line":"red"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	trips.AssertNotCalled(t, "Start")
}

func TestStartTripStationNotOnLine(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	// Nagasandra is green-line only
	body := bytes.NewBufferString(`{"from_station":"Nagasandra","to_station":"Majestic","line":"purple"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	trips.AssertNotCalled(t, "Start")
}

func TestStartTripWithActiveTripConflicts(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	trips.On("Start", mock.Anything, "u1", "Indiranagar", "Majestic", "purple").
		Return(models.Trip{}, repositories.ErrActiveTripExists).Once()

	body := bytes.NewBufferString(`{"from_station":"Indiranagar","to_station":"Majestic","line":"purple"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "conflict", resp["error_kind"])
}

func TestEndTrip(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	trips.On("End", mock.Anything, "t1", "u1").Return(models.Trip{ID: "t1", UserID: "u1", Active: false}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/trips/t1", bytes.NewBufferString(`{"active":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Active)
	trips.AssertExpectations(t)
}

func TestEndTripAlreadyEnded(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	trips.On("End", mock.Anything, "t1", "u1").Return(models.Trip{}, repositories.ErrTripNotEditable).Once()

	req := httptest.NewRequest(http.MethodPut, "/trips/t1", bytes.NewBufferString(`{"active":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateTripCurrentStation(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	trips.On("UpdateCurrentStation", mock.Anything, "t1", "u1", "MG Road").
		Return(models.Trip{ID: "t1", UserID: "u1", Active: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/trips/t1", bytes.NewBufferString(`{"current_station":"MG Road"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	trips.AssertExpectations(t)
}

func TestUpdateTripUnknownStation(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	req := httptest.NewRequest(http.MethodPut, "/trips/t1", bytes.NewBufferString(`{"current_station":"Atlantis"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	trips.AssertNotCalled(t, "UpdateCurrentStation")
}

func TestUpdateTripNothingToDo(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	req := httptest.NewRequest(http.MethodPut, "/trips/t1", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTrips(t *testing.T) {
	trips := new(mocks.TripRepositoryMock)
	router := setupTripRouter(NewTripHandler(trips))

	trips.On("ListForUser", mock.Anything, "u1").Return([]models.Trip{
		{ID: "t2", UserID: "u1", Active: true},
		{ID: "t1", UserID: "u1", Active: false},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Trips []models.Trip `json:"trips"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Trips, 2)
	assert.Equal(t, "t2", resp.Trips[0].ID)
}
