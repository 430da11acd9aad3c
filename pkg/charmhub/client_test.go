package charmhub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refreshServing answers the refresh API with the revisions in cells, keyed
// by "arch/base" of the requested install action.
func refreshServing(t *testing.T, charm, channel string, cells map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Actions, 1)

		action := req.Actions[0]
		assert.Equal(t, "install", action.Action)
		assert.Equal(t, charm, action.Name)
		assert.Equal(t, channel, action.Channel)
		assert.Equal(t, "ubuntu", action.Base.Name)

		revision, ok := cells[action.Base.Architecture+"/"+action.Base.Channel]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"results":[{"charm":{"revision":%d}}]}`, revision)
	}))
}

func TestFindRevision(t *testing.T) {
	server := refreshServing(t, "k8s-operator", "1.32/candidate", map[string]int{
		"amd64/22.04": 741,
	})
	defer server.Close()

	client := NewClient()
	client.refreshURL = server.URL

	revision, err := client.FindRevision("k8s-operator", "1.32/candidate", "amd64", "22.04")
	require.NoError(t, err)
	assert.Equal(t, "741", revision)

	t.Run("unpublished cell yields empty revision", func(t *testing.T) {
		revision, err := client.FindRevision("k8s-operator", "1.32/candidate", "arm64", "22.04")
		require.NoError(t, err)
		assert.Empty(t, revision)
	})
}

func TestGetRevisionMatrix(t *testing.T) {
	server := refreshServing(t, "k8s-operator", "1.32/candidate", map[string]int{
		"amd64/22.04": 741,
		"amd64/24.04": 742,
		"arm64/22.04": 748,
	})
	defer server.Close()

	client := NewClient()
	client.refreshURL = server.URL

	matrix, err := client.GetRevisionMatrix("k8s-operator", "1.32/candidate")
	require.NoError(t, err)
	assert.Equal(t, "741", matrix.Get("amd64", "22.04"))
	assert.Equal(t, "742", matrix.Get("amd64", "24.04"))
	assert.Equal(t, "748", matrix.Get("arm64", "22.04"))
	assert.Empty(t, matrix.Get("arm64", "24.04"))
}

func TestAuthMacaroon(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		t.Setenv("CHARMCRAFT_AUTH", base64.StdEncoding.EncodeToString([]byte(`{"v":"macaroon-value"}`)))
		macaroon, err := AuthMacaroon()
		require.NoError(t, err)
		assert.Equal(t, "macaroon-value", macaroon)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv("CHARMCRAFT_AUTH", "")
		_, err := AuthMacaroon()
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		t.Setenv("CHARMCRAFT_AUTH", "%%%")
		_, err := AuthMacaroon()
		assert.Error(t, err)
	})
}
