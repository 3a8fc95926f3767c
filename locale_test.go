package postfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-postfix/adapter"
)

func TestLocalePriorities(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want []string
	}{
		{name: "region falls back to base", tags: []string{"cs-CZ", "en"}, want: []string{"cs-CZ", "cs", "en"}},
		{name: "underscores and case are normalised", tags: []string{"en_us"}, want: []string{"en-US", "en"}},
		{name: "explicit script is kept", tags: []string{"zh-Hant-TW"}, want: []string{"zh-Hant-TW", "zh-Hant", "zh"}},
		{name: "duplicates collapse", tags: []string{"de-AT", "de-DE", "de"}, want: []string{"de-AT", "de", "de-DE"}},
		{name: "blank entries are skipped", tags: []string{"", " fr "}, want: []string{"fr"}},
		{name: "no tags", tags: nil, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalePriorities(tc.tags...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLocalePrioritiesRejectsMalformedTags(t *testing.T) {
	_, err := LocalePriorities("en", "not a tag!")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSetLocalePriorities(t *testing.T) {
	e := loadEngine(t, adapter.NewYAML(), map[string]string{
		"":      "greeting: Hello\ncolour: colour\n",
		"cs":    "greeting: Ahoj\n",
		"en-US": "colour: color\n",
	})

	require.NoError(t, e.SetLocalePriorities("cs-CZ"))
	assert.Equal(t, []string{"cs-CZ", "cs", ""}, e.Chain())
	greeting, _, err := Read[string](e, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "Ahoj", greeting)

	require.NoError(t, e.SetLocalePriorities("en-US"))
	colour, _, err := Read[string](e, "colour")
	require.NoError(t, err)
	assert.Equal(t, "color", colour)

	assert.Error(t, e.SetLocalePriorities("???"))
	assert.Equal(t, []string{"en-US", "en", ""}, e.Chain(), "a rejected tag leaves the chain untouched")
}
