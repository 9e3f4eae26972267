package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("Budget changed to **$200,000**.")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>$200,000</strong>")
}

func TestRenderHTMLList(t *testing.T) {
	html, err := RenderHTML("Creative requirements:\n- **Social**: feed video\n- **Display**: banners")
	require.NoError(t, err)
	assert.Contains(t, html, "<ul>")
	assert.Contains(t, html, "<li>")
}

func TestSplitForecastCards(t *testing.T) {
	content := "Here's the forecast.\n[FORECAST_CARDS]{\"totalP50\":42}[/FORECAST_CARDS]"

	prose, cards := SplitForecastCards(content)
	assert.Equal(t, "Here's the forecast.", prose)
	assert.Equal(t, `{"totalP50":42}`, cards)

	prose, cards = SplitForecastCards("no payload here")
	assert.Equal(t, "no payload here", prose)
	assert.Empty(t, cards)
}

func TestRenderHTMLDropsForecastPayload(t *testing.T) {
	content := "Forecast below.\n[FORECAST_CARDS]{\"secret\":true}[/FORECAST_CARDS]"
	html, err := RenderHTML(content)
	require.NoError(t, err)
	assert.NotContains(t, html, "FORECAST_CARDS")
	assert.NotContains(t, html, "secret")
}
