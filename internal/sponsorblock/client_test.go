package sponsorblock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoID = "abc123"

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func videoHash(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

func TestFetchDirect_QueryParameters(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(Options{
		ServerAddress: srv.URL + "/",
		Categories:    []Category{CategorySponsor, CategoryIntro},
		Actions:       []Action{ActionSkip, ActionMute},
	})

	_, err := c.FetchDirect(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "/api/skipSegments", gotPath)
	assert.Equal(t, []string{testVideoID}, gotQuery["videoID"])
	assert.Equal(t, []string{"sponsor", "intro"}, gotQuery["category"])
	assert.Equal(t, []string{"skip", "mute"}, gotQuery["actionType"])
}

func TestFetchDirect_DecodesSegments(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"category":"sponsor","actionType":"skip","segment":[30,90],"UUID":"a"},
			{"category":"music_offtopic","actionType":"mute","segment":[100.5,120],"UUID":"b"},
			{"category":"poi_highlight","actionType":"poi","segment":[200,200],"UUID":"c"}
		]`))
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	segments, err := c.FetchDirect(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, Segment{Category: CategorySponsor, Action: ActionSkip, Start: 30, End: 90, UUID: "a"}, segments[0])
	assert.Equal(t, CategoryMusicOfftopic, segments[1].Category)
	assert.Equal(t, ActionMute, segments[1].Action)
	assert.Equal(t, CategoryHighlightPoint, segments[2].Category)
	assert.Equal(t, ActionPoi, segments[2].Action)
}

func TestFetchDirect_SkipsUnusableRecords(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"category":"sponsor","actionType":"skip","segment":[90,30],"UUID":"inverted"},
			{"category":"chapter","actionType":"chapter","segment":[0,10],"UUID":"unknown"},
			{"category":"sponsor","actionType":"skip","segment":[10,20],"UUID":"ok"}
		]`))
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	segments, err := c.FetchDirect(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "ok", segments[0].UUID)
}

func TestFetchDirect_NotFoundIsEmpty(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	segments, err := c.FetchDirect(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestFetch_AnySuccessStatus(t *testing.T) {
	body := `[{"category":"sponsor","actionType":"skip","segment":[30,90],"UUID":"a"}]`
	privateBody := `[{"videoID":"` + testVideoID + `","hash":"` + videoHash(testVideoID) +
		`","segments":` + body + `}]`

	tests := []struct {
		name    string
		privacy bool
		status  int
		body    string
		want    int
	}{
		{"direct no content", false, http.StatusNoContent, "", 0},
		{"direct empty 200 body", false, http.StatusOK, "", 0},
		{"direct accepted with segments", false, http.StatusAccepted, body, 1},
		{"private no content", true, http.StatusNoContent, "", 0},
		{"private partial content", true, http.StatusPartialContent, privateBody, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			c := NewClient(Options{ServerAddress: srv.URL, PrivacyAPI: tt.privacy})
			segments, err := c.Fetch(context.Background(), testVideoID)

			require.NoError(t, err)
			assert.Len(t, segments, tt.want)
		})
	}
}

func TestFetchDirect_ServerErrorIsTransient(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	_, err := c.FetchDirect(context.Background(), testVideoID)

	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTransient, kind)
}

func TestFetchDirect_BadJSONIsMalformed(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	_, err := c.FetchDirect(context.Background(), testVideoID)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformed, kind)
}

func TestFetchDirect_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(Options{ServerAddress: addr})
	_, err := c.FetchDirect(context.Background(), testVideoID)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTransient, kind)
}

func TestFetchDirect_CancelledContext(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Options{ServerAddress: srv.URL})
	_, err := c.FetchDirect(ctx, testVideoID)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindCancelled, kind)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchPrivate_SendsHashPrefixOnly(t *testing.T) {
	hash := videoHash(testVideoID)
	var gotPath, gotRawQuery string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(Options{
		ServerAddress: srv.URL,
		Categories:    []Category{CategorySponsor},
		Actions:       []Action{ActionSkip},
	})
	_, err := c.FetchPrivate(context.Background(), testVideoID)
	require.NoError(t, err)

	assert.Equal(t, "/api/skipSegments/"+hash[:4], gotPath)
	assert.NotContains(t, gotRawQuery, testVideoID)
	assert.NotContains(t, gotRawQuery, "videoID")
	assert.Contains(t, gotRawQuery, "category=sponsor")
	assert.Contains(t, gotRawQuery, "actionType=skip")
}

func TestFetchPrivate_SelectsMatchingHash(t *testing.T) {
	hash := videoHash(testVideoID)
	other := videoHash("someone-else")
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		body := `[
			{"videoID":"x","hash":"` + other + `","segments":[
				{"category":"intro","actionType":"skip","segment":[0,5],"UUID":"wrong"}]},
			{"videoID":"abc123","hash":"` + strings.ToUpper(hash) + `","segments":[
				{"category":"sponsor","actionType":"skip","segment":[30,90],"UUID":"right"}]}
		]`
		_, _ = w.Write([]byte(body))
	})

	c := NewClient(Options{ServerAddress: srv.URL, PrivacyAPI: true})
	segments, err := c.Fetch(context.Background(), testVideoID)

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "right", segments[0].UUID)
}

func TestFetchPrivate_NoMatchIsEmpty(t *testing.T) {
	other := videoHash("someone-else")
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"hash":"` + other + `","segments":[
			{"category":"sponsor","actionType":"skip","segment":[1,2],"UUID":"x"}]}]`))
	})

	c := NewClient(Options{ServerAddress: srv.URL, PrivacyAPI: true})
	segments, err := c.FetchPrivate(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestFetchPrivate_NotFoundIsEmpty(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := NewClient(Options{ServerAddress: srv.URL, PrivacyAPI: true})
	segments, err := c.FetchPrivate(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestFetch_SelectsDirectStrategy(t *testing.T) {
	var gotPath string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(Options{ServerAddress: srv.URL})
	_, err := c.Fetch(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Equal(t, "/api/skipSegments", gotPath)
}
