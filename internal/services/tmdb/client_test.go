package tmdb

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     "test-api-key",
		httpClient: &http.Client{},
		cache:      gocache.New(configCacheTTL, 10*time.Minute),
		logger:     logger,
	}

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestGetConfigurationIsCached(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder("GET", defaultBaseURL+"/configuration",
		func(req *http.Request) (*http.Response, error) {
			calls++
			assert.Equal(t, "test-api-key", req.URL.Query().Get("api_key"))
			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"images": map[string]interface{}{
					"secure_base_url": "https://image.tmdb.org/t/p/",
					"poster_sizes":    []string{"w185", "w500"},
					"backdrop_sizes":  []string{"w780"},
				},
			})
		})

	first, err := client.GetConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/", first.Images.SecureBaseURL)

	second, err := client.GetConfiguration(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestShowImagesMapsPostersAndBackdrops(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/tv/500/images",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"posters": []map[string]interface{}{
				{"file_path": "/poster.jpg", "vote_average": 7.5, "iso_639_1": "en"},
			},
			"backdrops": []map[string]interface{}{
				{"file_path": "/backdrop.jpg", "vote_average": 6.0, "iso_639_1": ""},
			},
		}))

	images, err := client.ShowImages(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "poster", string(images[0].Kind))
	assert.Equal(t, "/poster.jpg", images[0].Path)
	assert.Equal(t, "en", images[0].Language)
	assert.Equal(t, 7.5, images[0].Rating)

	assert.Equal(t, "backdrop", string(images[1].Kind))
}

func TestGetShowMapsArtwork(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/tv/500",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"id":            500,
			"name":          "Test Show",
			"poster_path":   "/p.jpg",
			"backdrop_path": "",
			"homepage":      "https://example.com",
		}))

	show, err := client.GetShow(context.Background(), 500)
	require.NoError(t, err)
	assert.EqualValues(t, 500, show.TmdbID)
	assert.Equal(t, "/p.jpg", *show.TmdbPosterPath)
	assert.Nil(t, show.TmdbBackdropPath)
	assert.Equal(t, "https://example.com", *show.Homepage)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder("GET", defaultBaseURL+"/tv/404/images",
		func(req *http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(404, "not found"), nil
		})

	_, err := client.ShowImages(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
