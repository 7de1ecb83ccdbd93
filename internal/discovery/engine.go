package discovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"commute-service/internal/models"
	"commute-service/internal/privacy"
	"commute-service/internal/repositories"
	"commute-service/internal/stations"
)

// ErrSelfTarget means an operation targeted its own caller.
var ErrSelfTarget = errors.New("operation targets the caller")

// DefaultWaveCooldown is the window within which a repeat wave to the same
// recipient is recorded but not surfaced as a new alert.
const DefaultWaveCooldown = 24 * time.Hour

// Filters narrow the discovery pool. All set filters are AND-combined.
type Filters struct {
	SameOrganization bool
	SameDestination  bool
	TravelingNow     bool
	Line             string
}

// Relationship is the viewer's standing toward a candidate.
type Relationship struct {
	ConnectionID     string                  `json:"connection_id,omitempty"`
	ConnectionStatus models.ConnectionStatus `json:"connection_status,omitempty"`
	WavedByMe        bool                    `json:"waved_by_me"`
	WavedAtMe        bool                    `json:"waved_at_me"`
}

// CandidateCard is one discovery result.
type CandidateCard struct {
	Profile      models.RedactedProfile `json:"profile"`
	CurrentTrip  *models.Trip           `json:"current_trip,omitempty"`
	Relationship Relationship           `json:"relationship"`
}

// Engine produces the candidate list for a viewer and owns the wave
// send policy. It only reads through repositories; no state of its own.
type Engine struct {
	profiles     repositories.ProfileRepository
	trips        repositories.TripRepository
	connections  repositories.ConnectionRepository
	waves        repositories.WaveRepository
	waveCooldown time.Duration
}

// NewEngine constructs an Engine. A zero cooldown selects the default.
func NewEngine(
	profiles repositories.ProfileRepository,
	trips repositories.TripRepository,
	connections repositories.ConnectionRepository,
	waves repositories.WaveRepository,
	waveCooldown time.Duration,
) *Engine {
	if waveCooldown <= 0 {
		waveCooldown = DefaultWaveCooldown
	}
	return &Engine{
		profiles:     profiles,
		trips:        trips,
		connections:  connections,
		waves:        waves,
		waveCooldown: waveCooldown,
	}
}

// Discover returns the ordered candidate list for the viewer. The pool is
// every profiled user except the viewer, minus profiles the viewer may not
// see and users already connected to the viewer. Pending and rejected
// connections do not exclude a candidate; re-requesting is allowed.
func (e *Engine) Discover(ctx context.Context, viewerID string, filters Filters) ([]CandidateCard, error) {
	viewerProfile, err := e.profiles.Get(ctx, viewerID)
	var viewer *models.Profile
	switch {
	case err == nil:
		viewer = &viewerProfile
	case errors.Is(err, repositories.ErrProfileNotFound):
		// onboarding incomplete; the viewer can still browse public profiles
	default:
		return nil, err
	}

	pool, err := e.profiles.ListOthers(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	conns, err := e.connections.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	connByCounterpart := make(map[string]models.Connection, len(conns))
	for _, conn := range conns {
		connByCounterpart[conn.Counterpart(viewerID)] = conn
	}

	activeTrips, err := e.trips.ActiveByUser(ctx)
	if err != nil {
		return nil, err
	}

	wavedByMe := map[string]bool{}
	sent, err := e.waves.ListSentBy(ctx, viewerID, time.Time{})
	if err != nil {
		return nil, err
	}
	for _, wave := range sent {
		wavedByMe[wave.ToUserID] = true
	}

	wavedAtMe := map[string]bool{}
	signals, err := e.waves.ListSignalsFor(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for _, signal := range signals {
		wavedAtMe[signal.FromUserID] = true
	}

	var cards []CandidateCard
	for _, subject := range pool {
		if !privacy.Visible(viewerID, viewer, subject) {
			continue
		}
		conn, connected := connByCounterpart[subject.UserID]
		if connected && conn.Status == models.ConnectionAccepted {
			// already connected; surfaced by the connections listing instead
			continue
		}

		trip, traveling := activeTrips[subject.UserID]
		if !e.matches(viewer, subject, trip, traveling, filters) {
			continue
		}

		view, err := privacy.View(viewerID, viewer, subject)
		if err != nil {
			continue
		}
		card := CandidateCard{
			Profile: view,
			Relationship: Relationship{
				WavedByMe: wavedByMe[subject.UserID],
				WavedAtMe: wavedAtMe[subject.UserID],
			},
		}
		if connected {
			card.Relationship.ConnectionID = conn.ID
			card.Relationship.ConnectionStatus = conn.Status
		}
		if traveling {
			t := trip
			card.CurrentTrip = &t
		}
		cards = append(cards, card)
	}

	sortCards(cards)
	return cards, nil
}

// matches applies the AND-combined filters to one candidate.
func (e *Engine) matches(viewer *models.Profile, subject models.Profile, trip models.Trip, traveling bool, f Filters) bool {
	if f.SameOrganization {
		if viewer == nil || viewer.OrganizationName == "" || subject.OrganizationName != viewer.OrganizationName {
			return false
		}
	}
	if f.SameDestination {
		if viewer == nil || viewer.WorkStation == "" || subject.WorkStation != viewer.WorkStation {
			return false
		}
	}
	if f.TravelingNow && !traveling {
		return false
	}
	if f.Line != "" {
		line := stations.Line(f.Line)
		if traveling {
			if trip.Line != f.Line {
				return false
			}
		} else if !stations.RouteIntersectsLine(line, subject.HomeStation, subject.WorkStation) {
			return false
		}
	}
	return true
}

// sortCards orders active-trip candidates first, most recently started trip
// first, then the rest by profile creation recency. Ties break on user id
// for determinism.
func sortCards(cards []CandidateCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		aTravels, bTravels := a.CurrentTrip != nil, b.CurrentTrip != nil
		if aTravels != bTravels {
			return aTravels
		}
		if aTravels {
			if !a.CurrentTrip.StartTime.Equal(b.CurrentTrip.StartTime) {
				return a.CurrentTrip.StartTime.After(b.CurrentTrip.StartTime)
			}
			return a.Profile.UserID < b.Profile.UserID
		}
		if !a.Profile.CreatedAt.Equal(b.Profile.CreatedAt) {
			return a.Profile.CreatedAt.After(b.Profile.CreatedAt)
		}
		return a.Profile.UserID < b.Profile.UserID
	})
}

// SendWave records a wave from one user to another. A wave to oneself or to
// a hidden profile is rejected. A repeat wave inside the cooldown window is
// still stored but reported as a repeat so no new alert is raised. The store
// decides the repeat flag atomically with the insert, so two concurrent
// waves for the same pair cannot both come back fresh.
func (e *Engine) SendWave(ctx context.Context, fromUserID, toUserID string) (models.Wave, bool, error) {
	if fromUserID == toUserID {
		return models.Wave{}, false, ErrSelfTarget
	}
	if err := e.CheckVisible(ctx, fromUserID, toUserID); err != nil {
		return models.Wave{}, false, err
	}
	return e.waves.Create(ctx, fromUserID, toUserID, e.waveCooldown)
}

// ViewProfile returns the subject's profile as the viewer may see it.
func (e *Engine) ViewProfile(ctx context.Context, viewerID, subjectID string) (models.RedactedProfile, error) {
	subject, err := e.profiles.Get(ctx, subjectID)
	if err != nil {
		return models.RedactedProfile{}, err
	}
	viewer, err := e.viewerProfile(ctx, viewerID)
	if err != nil {
		return models.RedactedProfile{}, err
	}
	return privacy.View(viewerID, viewer, subject)
}

// CheckVisible reports privacy.ErrNotVisible when the subject's profile is
// hidden from the viewer. A subject without a profile is treated as absent.
func (e *Engine) CheckVisible(ctx context.Context, viewerID, subjectID string) error {
	subject, err := e.profiles.Get(ctx, subjectID)
	if err != nil {
		return err
	}
	viewer, err := e.viewerProfile(ctx, viewerID)
	if err != nil {
		return err
	}
	if !privacy.Visible(viewerID, viewer, subject) {
		return privacy.ErrNotVisible
	}
	return nil
}

func (e *Engine) viewerProfile(ctx context.Context, viewerID string) (*models.Profile, error) {
	profile, err := e.profiles.Get(ctx, viewerID)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
