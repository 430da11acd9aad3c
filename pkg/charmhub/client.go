package charmhub

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/cdkbot/releasemgr/pkg/bundle"
	"github.com/cdkbot/releasemgr/pkg/log"
)

const (
	refreshURL = "https://api.charmhub.io/v2/charms/refresh"

	// Timeout for store API requests
	requestTimeout = 10 * time.Second
)

// Bases probed when building a revision matrix. The trailing entries are
// forward-compatible placeholders for bases the store does not serve yet.
var probedBases = []string{"20.04", "22.04", "24.04", "26.04", "28.04", "30.04"}

// probedArches are the architectures the charms are published for
var probedArches = []string{"amd64", "arm64"}

// charmcraftPath is the charmcraft binary used for promotions
var charmcraftPath = "/snap/bin/charmcraft"

// Client queries and mutates Charmhub
type Client struct {
	http *http.Client

	// refreshURL overrides the refresh endpoint, for tests
	refreshURL string
}

// NewClient creates a charmhub client with a bounded request timeout
func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: requestTimeout}}
}

// refresh API wire types

type refreshRequest struct {
	Actions []refreshAction  `json:"actions"`
	Context []map[string]any `json:"context"`
}

type refreshAction struct {
	Action      string      `json:"action"`
	Base        refreshBase `json:"base"`
	Channel     string      `json:"channel"`
	Name        string      `json:"name"`
	InstanceKey string      `json:"instance-key"`
}

type refreshBase struct {
	Architecture string `json:"architecture"`
	Channel      string `json:"channel"`
	Name         string `json:"name"`
}

type refreshResponse struct {
	Results []struct {
		Charm struct {
			Revision *int `json:"revision"`
		} `json:"charm"`
	} `json:"results"`
}

// FindRevision returns the revision of a charm published on a channel for
// one (arch, base), or "" when nothing is published there.
func (c *Client) FindRevision(charm, channel, arch, base string) (string, error) {
	logger := log.WithComponent("charmhub")
	logger.Debug().
		Str("charm", charm).Str("channel", channel).
		Str("arch", arch).Str("base", base).
		Msg("Querying Charmhub for revision")

	payload := refreshRequest{
		Actions: []refreshAction{{
			Action:      "install",
			Base:        refreshBase{Architecture: arch, Channel: base, Name: "ubuntu"},
			Channel:     channel,
			Name:        charm,
			InstanceKey: "query",
		}},
		Context: []map[string]any{},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	target := c.refreshURL
	if target == "" {
		target = refreshURL
	}
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("query charmhub for %s %s: %w", charm, channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The refresh API answers 404-ish statuses for unknown channels;
		// treat anything non-200 as "no revision".
		return "", nil
	}

	var decoded refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode charmhub response for %s %s: %w", charm, channel, err)
	}
	if len(decoded.Results) == 0 || decoded.Results[0].Charm.Revision == nil {
		return "", nil
	}
	return strconv.Itoa(*decoded.Results[0].Charm.Revision), nil
}

// GetRevisionMatrix probes every known (arch, base) pair of a charm on a
// channel and collects the published revisions.
func (c *Client) GetRevisionMatrix(charm, channel string) (*bundle.RevisionMatrix, error) {
	logger := log.WithComponent("charmhub")
	logger.Info().
		Str("charm", charm).Str("channel", channel).
		Msg("Querying Charmhub for revision matrix")

	matrix := bundle.NewRevisionMatrix()
	for _, base := range probedBases {
		for _, arch := range probedArches {
			revision, err := c.FindRevision(charm, channel, arch, base)
			if err != nil {
				return nil, err
			}
			if revision != "" {
				matrix.Set(arch, base, revision)
			}
		}
	}
	return matrix, nil
}

// PromoteCharm promotes every revision of a charm from one channel to
// another via charmcraft.
func (c *Client) PromoteCharm(charm, fromChannel, toChannel string) error {
	cmd := exec.Command(charmcraftPath, "promote", charm, fromChannel, toChannel)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("promote charm %s from %s to %s: %w: %s",
			charm, fromChannel, toChannel, err, output)
	}
	return nil
}

// AuthMacaroon returns the charmhub macaroon from CHARMCRAFT_AUTH, the
// credentials exported by "charmcraft login --export".
func AuthMacaroon() (string, error) {
	creds := os.Getenv("CHARMCRAFT_AUTH")
	if creds == "" {
		return "", fmt.Errorf("missing charmhub credentials")
	}
	decoded, err := base64.StdEncoding.DecodeString(creds)
	if err != nil {
		return "", fmt.Errorf("malformed charmhub credentials: %w", err)
	}
	var auth struct {
		V string `json:"v"`
	}
	if err := json.Unmarshal(decoded, &auth); err != nil {
		return "", fmt.Errorf("malformed charmhub credentials: %w", err)
	}
	if auth.V == "" {
		return "", fmt.Errorf("malformed charmhub credentials")
	}
	return auth.V, nil
}
