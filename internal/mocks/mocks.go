package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"commute-service/internal/identity"
	"commute-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetUsers(ctx context.Context, userIDs []string) (map[string]models.User, error) {
	args := m.Called(ctx, userIDs)
	var out map[string]models.User
	if val := args.Get(0); val != nil {
		out = val.(map[string]models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	args := m.Called(ctx, token, userID, expiresAt)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetSession(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	var out models.Session
	if val := args.Get(0); val != nil {
		out = val.(models.Session)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) Get(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) ListOthers(ctx context.Context, excludeUserID string) ([]models.Profile, error) {
	args := m.Called(ctx, excludeUserID)
	var out []models.Profile
	if val := args.Get(0); val != nil {
		out = val.([]models.Profile)
	}
	return out, args.Error(1)
}

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) Request(ctx context.Context, requesterID, recipientID string, rerequestAfterReject bool) (models.Connection, error) {
	args := m.Called(ctx, requesterID, recipientID, rerequestAfterReject)
	var out models.Connection
	if val := args.Get(0); val != nil {
		out = val.(models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) Respond(ctx context.Context, connectionID, responderID string, accept bool) (models.Connection, error) {
	args := m.Called(ctx, connectionID, responderID, accept)
	var out models.Connection
	if val := args.Get(0); val != nil {
		out = val.(models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) GetForPair(ctx context.Context, userA, userB string) (models.Connection, error) {
	args := m.Called(ctx, userA, userB)
	var out models.Connection
	if val := args.Get(0); val != nil {
		out = val.(models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) ListForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	args := m.Called(ctx, userID)
	var out []models.Connection
	if val := args.Get(0); val != nil {
		out = val.([]models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) ListAccepted(ctx context.Context, userID string) ([]models.Connection, error) {
	args := m.Called(ctx, userID)
	var out []models.Connection
	if val := args.Get(0); val != nil {
		out = val.([]models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) ListPendingForRecipient(ctx context.Context, userID string) ([]models.Connection, error) {
	args := m.Called(ctx, userID)
	var out []models.Connection
	if val := args.Get(0); val != nil {
		out = val.([]models.Connection)
	}
	return out, args.Error(1)
}

func (m *ConnectionRepositoryMock) AcceptedExists(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

type WaveRepositoryMock struct {
	mock.Mock
}

func (m *WaveRepositoryMock) Create(ctx context.Context, fromUserID, toUserID string, cooldown time.Duration) (models.Wave, bool, error) {
	args := m.Called(ctx, fromUserID, toUserID, cooldown)
	var out models.Wave
	if val := args.Get(0); val != nil {
		out = val.(models.Wave)
	}
	return out, args.Bool(1), args.Error(2)
}

func (m *WaveRepositoryMock) ListSignalsFor(ctx context.Context, userID string) ([]models.WaveSignal, error) {
	args := m.Called(ctx, userID)
	var out []models.WaveSignal
	if val := args.Get(0); val != nil {
		out = val.([]models.WaveSignal)
	}
	return out, args.Error(1)
}

func (m *WaveRepositoryMock) ListSentBy(ctx context.Context, userID string, since time.Time) ([]models.Wave, error) {
	args := m.Called(ctx, userID, since)
	var out []models.Wave
	if val := args.Get(0); val != nil {
		out = val.([]models.Wave)
	}
	return out, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, fromUserID, toUserID, content string) (models.Message, error) {
	args := m.Called(ctx, fromUserID, toUserID, content)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, viewerID, counterpartID string, upToSeq int64) (int64, error) {
	args := m.Called(ctx, viewerID, counterpartID, upToSeq)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, viewerID)
	var out []models.ConversationSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ConversationSummary)
	}
	return out, args.Error(1)
}

type TripRepositoryMock struct {
	mock.Mock
}

func (m *TripRepositoryMock) Start(ctx context.Context, userID, fromStation, toStation, line string) (models.Trip, error) {
	args := m.Called(ctx, userID, fromStation, toStation, line)
	var out models.Trip
	if val := args.Get(0); val != nil {
		out = val.(models.Trip)
	}
	return out, args.Error(1)
}

func (m *TripRepositoryMock) End(ctx context.Context, tripID, userID string) (models.Trip, error) {
	args := m.Called(ctx, tripID, userID)
	var out models.Trip
	if val := args.Get(0); val != nil {
		out = val.(models.Trip)
	}
	return out, args.Error(1)
}

func (m *TripRepositoryMock) UpdateCurrentStation(ctx context.Context, tripID, userID, station string) (models.Trip, error) {
	args := m.Called(ctx, tripID, userID, station)
	var out models.Trip
	if val := args.Get(0); val != nil {
		out = val.(models.Trip)
	}
	return out, args.Error(1)
}

func (m *TripRepositoryMock) ListForUser(ctx context.Context, userID string) ([]models.Trip, error) {
	args := m.Called(ctx, userID)
	var out []models.Trip
	if val := args.Get(0); val != nil {
		out = val.([]models.Trip)
	}
	return out, args.Error(1)
}

func (m *TripRepositoryMock) ActiveForUser(ctx context.Context, userID string) (models.Trip, error) {
	args := m.Called(ctx, userID)
	var out models.Trip
	if val := args.Get(0); val != nil {
		out = val.(models.Trip)
	}
	return out, args.Error(1)
}

func (m *TripRepositoryMock) ActiveByUser(ctx context.Context) (map[string]models.Trip, error) {
	args := m.Called(ctx)
	var out map[string]models.Trip
	if val := args.Get(0); val != nil {
		out = val.(map[string]models.Trip)
	}
	return out, args.Error(1)
}

type IdentityProviderMock struct {
	mock.Mock
}

func (m *IdentityProviderMock) ExchangeSession(ctx context.Context, sessionID string) (identity.SessionData, error) {
	args := m.Called(ctx, sessionID)
	var out identity.SessionData
	if val := args.Get(0); val != nil {
		out = val.(identity.SessionData)
	}
	return out, args.Error(1)
}
