// Package markdown renders agent message content to HTML for clients that
// ask for it. Message content is markdown and may carry a
// [FORECAST_CARDS]{json}[/FORECAST_CARDS] payload; the payload is lifted out
// before rendering so the JSON never leaks into the prose.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

var forecastCardsRegex = regexp.MustCompile(`(?s)\[FORECAST_CARDS\](.*?)\[/FORECAST_CARDS\]`)

// SplitForecastCards separates the sentinel-delimited forecast payload from
// the surrounding prose. The second return is the raw JSON, empty when the
// message carries none.
func SplitForecastCards(content string) (prose, cardsJSON string) {
	m := forecastCardsRegex.FindStringSubmatch(content)
	if m == nil {
		return content, ""
	}
	prose = strings.TrimSpace(forecastCardsRegex.ReplaceAllString(content, ""))
	return prose, strings.TrimSpace(m[1])
}

// RenderHTML converts message markdown to HTML. Forecast payloads are
// dropped from the prose; callers that want them should use
// SplitForecastCards first.
func RenderHTML(content string) (string, error) {
	prose, _ := SplitForecastCards(content)
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(prose), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return strings.TrimSpace(buf.String()), nil
}
