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

func setupConnectionRouter(handler *ConnectionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.POST("/connections", handler.Request)
	r.PUT("/connections/:id", handler.Respond)
	r.GET("/connections", handler.ListAccepted)
	r.GET("/connections/pending", handler.ListPending)
	return r
}

func TestRequestConnectionSuccess(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(profiles, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	profiles.On("Get", mock.Anything, "u2").Return(testProfile("u2"), nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()
	connections.On("Request", mock.Anything, "u1", "u2", true).Return(models.Connection{
		ID: "c1", RequesterID: "u1", RecipientID: "u2", Status: models.ConnectionPending,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"connected_user_id":"u2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Connection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.ConnectionPending, resp.Status)
	connections.AssertExpectations(t)
}

func TestRequestConnectionSelfRejected(t *testing.T) {
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(nil, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"connected_user_id":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "self_target", resp["error_kind"])
	connections.AssertNotCalled(t, "Request")
}

func TestRequestConnectionHiddenRecipientIs404(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(profiles, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	hidden := testProfile("u2")
	hidden.Visibility = models.VisibilityNobody
	profiles.On("Get", mock.Anything, "u2").Return(hidden, nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"connected_user_id":"u2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	connections.AssertNotCalled(t, "Request")
}

func TestRequestConnectionDuplicate(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(profiles, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	profiles.On("Get", mock.Anything, "u2").Return(testProfile("u2"), nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()
	connections.On("Request", mock.Anything, "u1", "u2", true).
		Return(models.Connection{}, repositories.ErrConnectionExists).Once()

	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"connected_user_id":"u2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "duplicate", resp["error_kind"])
}

func TestRespondAccept(t *testing.T) {
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(nil, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	connections.On("Respond", mock.Anything, "c1", "u1", true).Return(models.Connection{
		ID: "c1", RequesterID: "u2", RecipientID: "u1", Status: models.ConnectionAccepted,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/connections/c1", bytes.NewBufferString(`{"accept":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Connection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.ConnectionAccepted, resp.Status)
	connections.AssertExpectations(t)
}

func TestRespondRequiresAcceptField(t *testing.T) {
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(nil, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/connections/c1", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	connections.AssertNotCalled(t, "Respond")
}

func TestRespondOnlyRecipientMayAnswer(t *testing.T) {
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(nil, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	connections.On("Respond", mock.Anything, "c1", "u1", false).
		Return(models.Connection{}, repositories.ErrNotResponder).Once()

	req := httptest.NewRequest(http.MethodPut, "/connections/c1", bytes.NewBufferString(`{"accept":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRespondAlreadyProcessed(t *testing.T) {
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(nil, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	connections.On("Respond", mock.Anything, "c1", "u1", true).
		Return(models.Connection{}, repositories.ErrConnectionNotPending).Once()

	req := httptest.NewRequest(http.MethodPut, "/connections/c1", bytes.NewBufferString(`{"accept":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestListPendingEnrichesProfiles(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	connections := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connections, newEngine(profiles, nil, connections, nil), nil, nil, true)
	router := setupConnectionRouter(handler)

	connections.On("ListPendingForRecipient", mock.Anything, "u1").Return([]models.Connection{
		{ID: "c1", RequesterID: "u2", RecipientID: "u1", Status: models.ConnectionPending},
	}, nil).Once()
	profiles.On("Get", mock.Anything, "u2").Return(testProfile("u2"), nil).Once()
	profiles.On("Get", mock.Anything, "u1").Return(testProfile("u1"), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/connections/pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Requests []struct {
			Connection models.Connection       `json:"connection"`
			Profile    *models.RedactedProfile `json:"profile"`
		} `json:"requests"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Requests, 1)
	require.NotNil(t, resp.Requests[0].Profile)
	assert.Equal(t, "u2", resp.Requests[0].Profile.UserID)
}
