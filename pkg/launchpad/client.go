package launchpad

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cdkbot/releasemgr/pkg/log"
)

const (
	apiRoot = "https://api.launchpad.net/devel"

	// Timeout for launchpad API requests
	requestTimeout = 30 * time.Second
)

// Credential environment variables. LPCREDS points at a credentials file
// written by launchpad's login flow; LPANON enables anonymous read-only
// access for dry runs.
const (
	credsFileEnv = "LPCREDS"
	anonymousEnv = "LPANON"
)

// Recipe is a launchpad snap recipe: the build definition tying a git
// branch to the store channels its builds are pushed to.
type Recipe struct {
	SelfLink          string            `json:"self_link"`
	Name              string            `json:"name"`
	GitRefLink        string            `json:"git_ref_link"`
	StoreName         string            `json:"store_name"`
	StoreChannels     []string          `json:"store_channels"`
	AutoBuildArchive  string            `json:"auto_build_archive_link"`
	AutoBuildPocket   string            `json:"auto_build_pocket"`
	AutoBuildChannels map[string]string `json:"auto_build_channels"`
	ProcessorLinks    []string          `json:"processors_collection_link"`
}

// Branch returns the git branch name the recipe builds from
func (r Recipe) Branch() string {
	if _, after, found := strings.Cut(r.GitRefLink, "+ref/"); found {
		return after
	}
	return ""
}

// Tracks returns the tracks of the store channels the recipe pushes to
func (r Recipe) Tracks() []string {
	tracks := make([]string, 0, len(r.StoreChannels))
	for _, ch := range r.StoreChannels {
		track, _, _ := strings.Cut(ch, "/")
		tracks = append(tracks, track)
	}
	return tracks
}

// Client talks to the launchpad REST API
type Client struct {
	owner string
	http  *http.Client
}

// NewClient creates a launchpad client for recipes owned by the given team
func NewClient(owner string) (*Client, error) {
	if os.Getenv(credsFileEnv) == "" && strings.ToLower(os.Getenv(anonymousEnv)) != "1" &&
		strings.ToLower(os.Getenv(anonymousEnv)) != "true" {
		return nil, fmt.Errorf("no launchpad credentials found")
	}
	return &Client{
		owner: owner,
		http:  &http.Client{Timeout: requestTimeout},
	}, nil
}

type recipePage struct {
	Entries []Recipe `json:"entries"`
}

// SnapsByStoreName returns all recipes of the owner that push to the given
// store name.
func (c *Client) SnapsByStoreName(storeName string) ([]Recipe, error) {
	query := url.Values{
		"ws.op":      {"findByStoreName"},
		"owner":      {"/~" + c.owner},
		"store_name": {storeName},
	}
	var page recipePage
	if err := c.get("/+snaps?"+query.Encode(), &page); err != nil {
		return nil, fmt.Errorf("find recipes for %s: %w", storeName, err)
	}
	return page.Entries, nil
}

// RecipeByName returns the recipe with the given name, or nil when it does
// not exist.
func (c *Client) RecipeByName(name string) (*Recipe, error) {
	query := url.Values{
		"ws.op": {"getByName"},
		"owner": {"/~" + c.owner},
		"name":  {name},
	}
	var recipe Recipe
	err := c.get("/+snaps?"+query.Encode(), &recipe)
	if err != nil {
		var notFound *statusError
		if errors.As(err, &notFound) && notFound.code == http.StatusNotFound {
			logger := log.WithComponent("launchpad")
			logger.Info().
				Str("recipe", name).Str("owner", c.owner).
				Msg("Recipe not found")
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe %s: %w", name, err)
	}
	return &recipe, nil
}

// BranchForTrack returns the git branch feeding the recipe that publishes a
// snap track, or "" when no recipe pushes to the track.
func (c *Client) BranchForTrack(snap, track string) (string, error) {
	recipes, err := c.SnapsByStoreName(snap)
	if err != nil {
		return "", err
	}
	for _, recipe := range recipes {
		for _, recipeTrack := range recipe.Tracks() {
			if recipeTrack == track {
				return recipe.Branch(), nil
			}
		}
	}
	return "", nil
}

// RequestBuilds asks launchpad to rebuild a recipe with its configured
// archive, pocket and snapcraft channels.
func (c *Client) RequestBuilds(recipe Recipe) error {
	payload := url.Values{
		"ws.op":    {"requestBuilds"},
		"archive":  {recipe.AutoBuildArchive},
		"pocket":   {recipe.AutoBuildPocket},
		"channels": {encodeChannels(recipe.AutoBuildChannels)},
	}
	if err := c.post(recipe.SelfLink, payload, nil); err != nil {
		return fmt.Errorf("request builds for %s: %w", recipe.Name, err)
	}
	return nil
}

func encodeChannels(channels map[string]string) string {
	encoded, _ := json.Marshal(channels)
	return string(encoded)
}

func (c *Client) get(path string, out any) error {
	target := path
	if !strings.HasPrefix(target, "http") {
		target = apiRoot + path
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) patch(target string, changes map[string]any) error {
	if !strings.HasPrefix(target, "http") {
		target = apiRoot + target
	}
	encoded, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPatch, target, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) post(target string, payload url.Values, out any) error {
	if !strings.HasPrefix(target, "http") {
		target = apiRoot + target
	}
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(payload.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if header, err := authHeader(); err != nil {
		return err
	} else if header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, url: req.URL.String()}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// authHeader builds the OAuth PLAINTEXT header launchpad expects, or ""
// for anonymous access.
func authHeader() (string, error) {
	credsFile := os.Getenv(credsFileEnv)
	if credsFile == "" {
		return "", nil
	}
	creds, err := parseCredentials(credsFile)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`OAuth realm="https://api.launchpad.net/", oauth_consumer_key=%q, `+
			`oauth_signature_method="PLAINTEXT", oauth_token=%q, oauth_signature=%q, `+
			`oauth_timestamp="%d", oauth_nonce="%d", oauth_version="1.0"`,
		creds.consumerKey, creds.accessToken, "&"+creds.accessSecret,
		time.Now().Unix(), time.Now().UnixNano(),
	), nil
}

type credentials struct {
	consumerKey  string
	accessToken  string
	accessSecret string
}

// parseCredentials reads the ini-style credentials file produced by
// launchpad's login flow.
func parseCredentials(path string) (credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return credentials{}, fmt.Errorf("read launchpad credentials: %w", err)
	}

	creds := credentials{}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "consumer_key":
			creds.consumerKey = value
		case "access_token":
			creds.accessToken = value
		case "access_secret":
			creds.accessSecret = value
		}
	}
	if creds.consumerKey == "" || creds.accessToken == "" {
		return credentials{}, fmt.Errorf("malformed launchpad credentials in %s", path)
	}
	return creds, nil
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.url, e.code)
}
