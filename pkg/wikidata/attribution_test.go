package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/water-fountains/datablue/internal/model"
)

func artistFeature(t *testing.T, value string) *model.Feature {
	t.Helper()
	f := model.NewFeature(8.54, 47.37, model.NewProperties([]model.PropertyKey{model.PropArtistName}))
	if value != "" {
		f.Properties.Get(model.PropArtistName).SetValue(value, "Wikidata", "")
	}
	return f
}

func labelServer(t *testing.T, entities string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "labels", r.URL.Query().Get("props"))
		fmt.Fprintf(w, `{"entities": {%s}}`, entities)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFillArtistName_ResolvesLabel(t *testing.T) {
	t.Parallel()

	srv := labelServer(t, `"Q77": {"id": "Q77", "labels": {
		"it": {"value": "Alfredo Aebli"},
		"de": {"value": "Alfred Aebli"}
	}}`)
	c := NewClient(WithAPIURL(srv.URL), WithRateLimit(1000))

	f := artistFeature(t, "Q77")
	require.NoError(t, c.FillArtistName(context.Background(), f))

	env := f.Properties.Get(model.PropArtistName)
	// "de" precedes "it" in the locale priority.
	assert.Equal(t, "Alfred Aebli", env.StringValue())
	assert.Equal(t, "Wikidata", env.SourceName)
	assert.Equal(t, "https://www.wikidata.org/wiki/Q77", env.SourceURL)
	assert.Empty(t, env.Issues)
}

func TestFillArtistName_SkipsDisplayNamesAndEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no lookup expected")
	}))
	t.Cleanup(srv.Close)
	c := NewClient(WithAPIURL(srv.URL), WithRateLimit(1000))

	named := artistFeature(t, "Alfred Aebli")
	require.NoError(t, c.FillArtistName(context.Background(), named))
	assert.Equal(t, "Alfred Aebli", named.Properties.Get(model.PropArtistName).StringValue())

	empty := artistFeature(t, "")
	require.NoError(t, c.FillArtistName(context.Background(), empty))
	assert.True(t, empty.Properties.Get(model.PropArtistName).IsNull())
}

func TestFillArtistName_MissingLabelIsIssueNotError(t *testing.T) {
	t.Parallel()

	srv := labelServer(t, `"Q77": {"id": "Q77", "missing": ""}`)
	c := NewClient(WithAPIURL(srv.URL), WithRateLimit(1000))

	f := artistFeature(t, "Q77")
	require.NoError(t, c.FillArtistName(context.Background(), f))

	env := f.Properties.Get(model.PropArtistName)
	// The bare identifier stays; the failed resolution is a diagnostic.
	assert.Equal(t, "Q77", env.StringValue())
	require.Len(t, env.Issues, 1)
	assert.Equal(t, model.StatusWarning, env.Issues[0].Status)
	assert.Equal(t, "Q77", env.Issues[0].Data)
}

func TestFillArtistName_FallsBackToAnyRealLocale(t *testing.T) {
	t.Parallel()

	srv := labelServer(t, `"Q77": {"id": "Q77", "labels": {
		"x-default": {"value": "mojibake"},
		"pl": {"value": "Alfred Aebli"}
	}}`)
	c := NewClient(WithAPIURL(srv.URL), WithRateLimit(1000))

	f := artistFeature(t, "Q77")
	require.NoError(t, c.FillArtistName(context.Background(), f))
	assert.Equal(t, "Alfred Aebli", f.Properties.Get(model.PropArtistName).StringValue())
}

func TestFillOperatorInfo_ResolvesLabel(t *testing.T) {
	t.Parallel()

	srv := labelServer(t, `"Q88": {"id": "Q88", "labels": {"de": {"value": "Wasserversorgung Zürich"}}}`)
	c := NewClient(WithAPIURL(srv.URL), WithRateLimit(1000))

	f := model.NewFeature(8.54, 47.37, model.NewProperties([]model.PropertyKey{model.PropOperatorName}))
	f.Properties.Get(model.PropOperatorName).SetValue("Q88", "Wikidata", "")

	require.NoError(t, c.FillOperatorInfo(context.Background(), f))
	assert.Equal(t, "Wasserversorgung Zürich", f.Properties.Get(model.PropOperatorName).StringValue())
}
