package snapstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"github.com/cdkbot/releasemgr/pkg/channel"
	"github.com/cdkbot/releasemgr/pkg/log"
)

const (
	infoURL = "https://api.snapcraft.io/v2/snaps/info/"

	// The track creation API lives on charmhub.io for snaps as well; see
	// the self-service track documentation.
	tracksURLFormat = "https://api.charmhub.io/v1/snap/%s/tracks"

	// Timeout for store API requests
	requestTimeout = 10 * time.Second
)

// snapcraftPath is the snapcraft binary used for releases
var snapcraftPath = "/snap/bin/snapcraft"

// MacaroonSource supplies the store auth macaroon for mutating calls
type MacaroonSource func() (string, error)

// Client queries and mutates the snap store
type Client struct {
	http     *http.Client
	macaroon MacaroonSource

	// infoURL and tracksURL override the store endpoints, for tests
	infoURL   string
	tracksURL string
}

// NewClient creates a snap store client. The macaroon source is only
// consulted for mutating calls (track creation).
func NewClient(macaroon MacaroonSource) *Client {
	return &Client{
		http:     &http.Client{Timeout: requestTimeout},
		macaroon: macaroon,
	}
}

// channel map wire types

type infoResponse struct {
	ChannelMap []channelMapEntry `json:"channel-map"`
}

type channelMapEntry struct {
	Channel struct {
		Architecture string `json:"architecture"`
		Name         string `json:"name"`
		ReleasedAt   string `json:"released-at"`
		Risk         string `json:"risk"`
		Track        string `json:"track"`
	} `json:"channel"`
	Revision int    `json:"revision"`
	Version  string `json:"version"`
}

// GetChannelGraph fetches the full channel map of a snap and builds the
// per-architecture channel graph the promotion reconciler consumes.
func (c *Client) GetChannelGraph(snap string) (*channel.Graph, error) {
	base := c.infoURL
	if base == "" {
		base = infoURL
	}
	req, err := http.NewRequest(http.MethodGet, base+snap, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Snap-Device-Series", "16")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query snap info for %s: %w", snap, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query snap info for %s: unexpected status %d", snap, resp.StatusCode)
	}

	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode snap info for %s: %w", snap, err)
	}

	graph := channel.NewGraph()
	for _, entry := range info.ChannelMap {
		risk, err := channel.ParseRisk(entry.Channel.Risk)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", entry.Channel.Name, err)
		}
		ch := channel.Channel{
			Name:         entry.Channel.Name,
			Track:        entry.Channel.Track,
			Risk:         risk,
			Architecture: entry.Channel.Architecture,
			Revision:     entry.Revision,
			Version:      entry.Version,
		}
		if entry.Channel.ReleasedAt != "" {
			released, err := time.Parse(time.RFC3339, entry.Channel.ReleasedAt)
			if err != nil {
				return nil, fmt.Errorf("channel %s: parse released-at: %w", entry.Channel.Name, err)
			}
			ch.ReleasedAt = &released
		}
		graph.Add(ch)
	}
	return graph, nil
}

// EnsureTrack makes sure a track exists for a snap. The snap info omits
// non-populated tracks, so the only way to know is to try creating it; a
// 409 means the track already exists and is not an error.
func (c *Client) EnsureTrack(snap, track string) error {
	storeLog := log.WithComponent("snapstore")
	storeLog.Info().Str("snap", snap).Str("track", track).Msg("Ensuring track")

	err := c.CreateTrack(snap, track)
	if err == nil {
		storeLog.Info().Str("snap", snap).Str("track", track).Msg("Track created")
		return nil
	}
	if errors.Is(err, ErrTrackExists) {
		storeLog.Info().Str("snap", snap).Str("track", track).Msg("Track already exists")
		return nil
	}
	return err
}

// CreateTrack creates a track for a snap. Returns a conflict error when the
// track already exists.
func (c *Client) CreateTrack(snap, track string) error {
	macaroon, err := c.macaroon()
	if err != nil {
		return err
	}

	payload := []map[string]string{{"name": track}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	format := c.tracksURL
	if format == "" {
		format = tracksURLFormat
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf(format, snap), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Macaroon "+macaroon)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("create track %s for %s: %w", track, snap, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("track %s for snap %s: %w", track, snap, ErrTrackExists)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("create track %s for %s: unexpected status %d", track, snap, resp.StatusCode)
	}
	return nil
}

// ReleaseRevision promotes a snap revision to a channel via snapcraft.
// snapcraft promote is not used because it refuses edge-to-beta promotions
// without manual confirmation.
func (c *Client) ReleaseRevision(snap string, revision int, channelName string) error {
	cmd := exec.Command(snapcraftPath, "release", snap, strconv.Itoa(revision), channelName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("release %s r%d to %s: %w: %s", snap, revision, channelName, err, output)
	}
	return nil
}

// ErrTrackExists marks a track creation that conflicted with an existing
// track.
var ErrTrackExists = errors.New("track already exists")
