package domain

import "time"

// SocialNetwork names a social platform.
type SocialNetwork string

const (
	NetworkFacebook  SocialNetwork = "Facebook"
	NetworkInstagram SocialNetwork = "Instagram"
	NetworkX         SocialNetwork = "X"
	NetworkLinkedIn  SocialNetwork = "LinkedIn"
	NetworkYouTube   SocialNetwork = "YouTube"
	NetworkOther     SocialNetwork = "Other"
)

// SocialNetworks lists the supported networks in display order.
var SocialNetworks = []SocialNetwork{
	NetworkFacebook, NetworkInstagram, NetworkX, NetworkLinkedIn, NetworkYouTube, NetworkOther,
}

// NormalizeNetwork maps unknown networks to Other.
func NormalizeNetwork(raw string) SocialNetwork {
	for _, n := range SocialNetworks {
		if string(n) == raw {
			return n
		}
	}
	return NetworkOther
}

// AutoSyncCadence controls how often a feed connection pulls content.
type AutoSyncCadence string

const (
	CadenceManual AutoSyncCadence = "Manual"
	CadenceDaily  AutoSyncCadence = "Daily"
	CadenceWeekly AutoSyncCadence = "Weekly"
)

// NormalizeCadence maps unknown cadences to Manual.
func NormalizeCadence(raw string) AutoSyncCadence {
	switch AutoSyncCadence(raw) {
	case CadenceDaily, CadenceWeekly:
		return AutoSyncCadence(raw)
	default:
		return CadenceManual
	}
}

// SocialMediaEntry records a piece of published social content.
type SocialMediaEntry struct {
	ID        int64
	Network   SocialNetwork
	Title     string
	URL       string
	Placement string
	Notes     *string
	CreatedAt time.Time
	TeamID    int64
	UserID    string
}

// SocialConnection is a team's feed link to one network.
type SocialConnection struct {
	ID         *int64
	Network    SocialNetwork
	Connected  bool
	AutoSync   AutoSyncCadence
	LastSynced *time.Time
}

// DefaultConnection is the disconnected state for a network.
func DefaultConnection(network SocialNetwork) SocialConnection {
	return SocialConnection{Network: network, AutoSync: CadenceManual}
}
