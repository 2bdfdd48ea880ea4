package wikidata

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/model"
)

// labelLocalePriority orders locales when picking a display label.
var labelLocalePriority = []string{"en", "de", "fr", "it", "tr"}

// FillArtistName implements Client. When the creator property holds only a
// QID, it resolves the entity's display label and replaces the value. The
// feature is mutated in place; a missing label is recorded as an issue, not
// an error.
func (c *httpClient) FillArtistName(ctx context.Context, f *model.Feature) error {
	return c.fillLabel(ctx, f, model.PropArtistName, "artist")
}

// FillOperatorInfo implements Client, analogous to FillArtistName for the
// operating organization.
func (c *httpClient) FillOperatorInfo(ctx context.Context, f *model.Feature) error {
	return c.fillLabel(ctx, f, model.PropOperatorName, "operator")
}

func (c *httpClient) fillLabel(ctx context.Context, f *model.Feature, key model.PropertyKey, what string) error {
	env := f.Properties.Get(key)
	if env == nil || env.IsNull() {
		return nil
	}
	qid := env.StringValue()
	if !IsQID(qid) {
		// Already a display name.
		return nil
	}

	label, found, err := c.labelForQID(ctx, qid)
	if err != nil {
		return eris.Wrapf(err, "wikidata: resolve %s label %s", what, qid)
	}
	if !found {
		env.AddIssue(model.Issue{
			Status:   model.StatusWarning,
			Message:  "no label found for referenced entity",
			Property: string(key),
			Data:     qid,
		})
		return nil
	}

	env.Value = label
	env.SourceName = "Wikidata"
	env.SourceURL = "https://www.wikidata.org/wiki/" + qid
	env.Status = model.StatusOK
	zap.L().Debug("wikidata: filled label",
		zap.String("what", what),
		zap.String("qid", qid),
		zap.String("label", label),
	)
	return nil
}

// labelForQID fetches the display label of one entity, preferring supported
// locales.
func (c *httpClient) labelForQID(ctx context.Context, qid string) (string, bool, error) {
	q := url.Values{
		"action": []string{"wbgetentities"},
		"ids":    []string{qid},
		"props":  []string{"labels"},
		"format": []string{"json"},
	}
	body, err := c.get(ctx, c.apiURL+"?"+q.Encode(), "labels")
	if err != nil {
		return "", false, err
	}

	var parsed entitiesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, eris.Wrap(err, "wikidata: decode labels response")
	}
	if parsed.Error != nil {
		return "", false, eris.Errorf("wikidata: labels api error: %s", parsed.Error.Info)
	}

	ent, ok := parsed.Entities[qid]
	if !ok || ent.Missing != nil || len(ent.Labels) == 0 {
		return "", false, nil
	}
	for _, locale := range labelLocalePriority {
		if l, ok := ent.Labels[locale]; ok && l.Value != "" {
			return l.Value, true, nil
		}
	}
	// Any remaining label beats the bare QID.
	for locale, l := range ent.Labels {
		if l.Value != "" && !strings.HasPrefix(locale, "x-") {
			return l.Value, true, nil
		}
	}
	return "", false, nil
}
