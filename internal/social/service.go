package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/notify"
	"github.com/spec-kit/pao-metrics/internal/repository"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// Actor is the signed-in user acting on their team's social media.
type Actor struct {
	UserID  string
	Profile domain.Profile
}

// NewEntry is the input of AddEntry.
type NewEntry struct {
	Network   string
	Title     string
	URL       string
	Placement string
	Notes     string
}

// Service manages a team's social content library and feed connections.
type Service struct {
	store  repository.SocialRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the service to a store. Demo mode passes a MemoryStore.
func NewService(store repository.SocialRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Entries lists the team's entries, newest first.
func (s *Service) Entries(ctx context.Context, actor Actor, n notify.Notifier) ([]domain.SocialMediaEntry, error) {
	if !actor.Profile.HasTeam() {
		return []domain.SocialMediaEntry{}, nil
	}
	entries, err := s.store.ListEntries(ctx, actor.Profile.TeamID)
	if err != nil {
		return nil, s.fail(n, "list social entries", "Error loading social media entries.", err)
	}
	return entries, nil
}

// AddEntry logs a new piece of social content for the team.
func (s *Service) AddEntry(ctx context.Context, actor Actor, in NewEntry, n notify.Notifier) (domain.SocialMediaEntry, error) {
	title, url := strings.TrimSpace(in.Title), strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return domain.SocialMediaEntry{}, apperrors.NewValidationError("title and url are required", nil)
	}
	if err := requireTeam(actor, n, "Assign a team before logging social media content."); err != nil {
		return domain.SocialMediaEntry{}, err
	}

	entry := domain.SocialMediaEntry{
		Network:   domain.NormalizeNetwork(in.Network),
		Title:     title,
		URL:       url,
		Placement: strings.TrimSpace(in.Placement),
		TeamID:    actor.Profile.TeamID,
		UserID:    actor.UserID,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		entry.Notes = &notes
	}
	if err := s.store.InsertEntry(ctx, &entry); err != nil {
		return domain.SocialMediaEntry{}, s.fail(n, "insert social entry", "Unable to save social media entry: "+err.Error(), err)
	}
	n.Notify(notify.LevelSuccess, "Social media entry saved.")
	return entry, nil
}

// DeleteEntry removes one of the team's entries.
func (s *Service) DeleteEntry(ctx context.Context, actor Actor, id int64, n notify.Notifier) error {
	if err := requireTeam(actor, n, "Assign a team before logging social media content."); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, actor.Profile.TeamID, id); err != nil {
		if repository.IsNoRows(err) {
			return apperrors.NewNotFound("social media entry", map[string]any{"id": id})
		}
		return s.fail(n, "delete social entry", "Unable to delete social media entry: "+err.Error(), err)
	}
	n.Notify(notify.LevelSuccess, "Social media entry deleted.")
	return nil
}

// Connections returns one connection per supported network, filling the
// networks the team never configured with the disconnected default.
func (s *Service) Connections(ctx context.Context, actor Actor, n notify.Notifier) ([]domain.SocialConnection, error) {
	if !actor.Profile.HasTeam() {
		return MergeConnections(nil), nil
	}
	stored, err := s.store.ListConnections(ctx, actor.Profile.TeamID)
	if err != nil {
		return nil, s.fail(n, "list social connections", "Error loading feed connections.", err)
	}
	return MergeConnections(stored), nil
}

// ToggleConnection flips a network's connected flag. Connecting stamps last synced.
func (s *Service) ToggleConnection(ctx context.Context, actor Actor, network domain.SocialNetwork, n notify.Notifier) (domain.SocialConnection, error) {
	current, err := s.connectionFor(ctx, actor, network, n, "Assign a team before managing feed connections.")
	if err != nil {
		return domain.SocialConnection{}, err
	}

	next := current
	next.Connected = !current.Connected
	if next.Connected {
		now := s.now().UTC()
		next.LastSynced = &now
	}
	if err := s.store.UpsertConnection(ctx, actor.Profile.TeamID, actor.UserID, next); err != nil {
		msg := fmt.Sprintf("Unable to update %s connection: %s", network, err.Error())
		return domain.SocialConnection{}, s.fail(n, "upsert social connection", msg, err)
	}
	if next.Connected {
		n.Notify(notify.LevelSuccess, fmt.Sprintf("%s feed connection enabled.", network))
	} else {
		n.Notify(notify.LevelSuccess, fmt.Sprintf("%s feed connection disabled.", network))
	}
	return next, nil
}

// SetCadence changes how often a network's feed syncs.
func (s *Service) SetCadence(ctx context.Context, actor Actor, network domain.SocialNetwork, cadence domain.AutoSyncCadence, n notify.Notifier) (domain.SocialConnection, error) {
	current, err := s.connectionFor(ctx, actor, network, n, "Assign a team before managing feed cadence.")
	if err != nil {
		return domain.SocialConnection{}, err
	}

	next := current
	next.AutoSync = cadence
	if err := s.store.UpsertConnection(ctx, actor.Profile.TeamID, actor.UserID, next); err != nil {
		msg := fmt.Sprintf("Unable to update %s cadence: %s", network, err.Error())
		return domain.SocialConnection{}, s.fail(n, "upsert social cadence", msg, err)
	}
	n.Notify(notify.LevelSuccess, fmt.Sprintf("%s feed cadence updated.", network))
	return next, nil
}

func (s *Service) connectionFor(ctx context.Context, actor Actor, network domain.SocialNetwork, n notify.Notifier, noTeamMsg string) (domain.SocialConnection, error) {
	if actor.Profile.Role != domain.RoleChief {
		return domain.SocialConnection{}, apperrors.NewForbidden("only chiefs manage feed connections")
	}
	if err := requireTeam(actor, n, noTeamMsg); err != nil {
		return domain.SocialConnection{}, err
	}
	conns, err := s.Connections(ctx, actor, n)
	if err != nil {
		return domain.SocialConnection{}, err
	}
	for _, c := range conns {
		if c.Network == network {
			return c, nil
		}
	}
	return domain.SocialConnection{}, apperrors.NewNotFound("social network", map[string]any{"network": network})
}

func (s *Service) fail(n notify.Notifier, op, msg string, err error) error {
	s.logger.Error(op, zap.Error(err))
	n.Notify(notify.LevelError, msg)
	return apperrors.NewUpstreamError(msg, err)
}

func requireTeam(actor Actor, n notify.Notifier, msg string) error {
	if actor.Profile.HasTeam() {
		return nil
	}
	n.Notify(notify.LevelError, msg)
	return apperrors.NewValidationError(msg, map[string]any{"team_id": actor.Profile.TeamID})
}

// MergeConnections lays stored connections over the per-network defaults, in network order.
func MergeConnections(stored []domain.SocialConnection) []domain.SocialConnection {
	byNetwork := make(map[domain.SocialNetwork]domain.SocialConnection, len(stored))
	for _, c := range stored {
		byNetwork[c.Network] = c
	}
	out := make([]domain.SocialConnection, 0, len(domain.SocialNetworks))
	for _, network := range domain.SocialNetworks {
		if c, ok := byNetwork[network]; ok {
			out = append(out, c)
			continue
		}
		out = append(out, domain.DefaultConnection(network))
	}
	return out
}
