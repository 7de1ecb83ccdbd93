package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commute-service/internal/mocks"
	"commute-service/internal/models"
)

func setupDiscoverRouter(handler *DiscoverHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/discover", handler.Discover)
	return r
}

func TestDiscoverUnknownLineIs400(t *testing.T) {
	handler := NewDiscoverHandler(newEngine(nil, nil, nil, nil))
	router := setupDiscoverRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/discover?line=red", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscoverEmptyPoolRendersEmptyList(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	trips := new(mocks.TripRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	waves := new(mocks.WaveRepositoryMock)
	handler := NewDiscoverHandler(newEngine(profiles, trips, connections, waves))
	router := setupDiscoverRouter(handler)

	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()
	profiles.On("ListOthers", mock.Anything, "u1").Return([]models.Profile(nil), nil).Once()
	connections.On("ListForUser", mock.Anything, "u1").Return([]models.Connection(nil), nil).Once()
	trips.On("ActiveByUser", mock.Anything).Return(map[string]models.Trip{}, nil).Once()
	waves.On("ListSentBy", mock.Anything, "u1", time.Time{}).Return([]models.Wave(nil), nil).Once()
	waves.On("ListSignalsFor", mock.Anything, "u1").Return([]models.WaveSignal(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/discover", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"candidates":[]}`, rec.Body.String())
}

func TestDiscoverPassesFilters(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	trips := new(mocks.TripRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	waves := new(mocks.WaveRepositoryMock)
	handler := NewDiscoverHandler(newEngine(profiles, trips, connections, waves))
	router := setupDiscoverRouter(handler)

	viewer := testProfile("u1")
	viewer.OrganizationName = "Infosys"
	peer := testProfile("u2")
	peer.OrganizationName = "Infosys"
	outsider := testProfile("u3")
	outsider.OrganizationName = "Wipro"

	profiles.On("Get", mock.Anything, "u1").Return(viewer, nil).Once()
	profiles.On("ListOthers", mock.Anything, "u1").Return([]models.Profile{peer, outsider}, nil).Once()
	connections.On("ListForUser", mock.Anything, "u1").Return([]models.Connection(nil), nil).Once()
	trips.On("ActiveByUser", mock.Anything).Return(map[string]models.Trip{}, nil).Once()
	waves.On("ListSentBy", mock.Anything, "u1", time.Time{}).Return([]models.Wave(nil), nil).Once()
	waves.On("ListSignalsFor", mock.Anything, "u1").Return([]models.WaveSignal(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/discover?same_organization=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Candidates []struct {
			Profile models.RedactedProfile `json:"profile"`
		} `json:"candidates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "u2", resp.Candidates[0].Profile.UserID)
}
