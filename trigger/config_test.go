package trigger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWords(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := Default()

	cfg, err := r.ValidateConfig(KindMatchWords, map[string]any{
		"words": []any{"badword", "other"},
	})
	require.NoError(err)
	wc, ok := cfg.(WordsConfig)
	require.True(ok)
	assert.Equal([]string{"badword", "other"}, wc.Words)
	assert.False(wc.CaseSensitive)
	assert.False(wc.Loose)

	// empty word list is rejected at validation, never reaches evaluation
	_, err = r.ValidateConfig(KindMatchWords, map[string]any{"words": []any{}})
	var ice *InvalidConfigError
	require.True(errors.As(err, &ice))
	assert.Equal(KindMatchWords, ice.Kind)

	_, err = r.ValidateConfig(KindMatchWords, map[string]any{"words": []any{"x"}, "bogus": true})
	assert.True(errors.As(err, &ice), "unknown fields are rejected")

	_, err = r.ValidateConfig(KindMatchWords, map[string]any{"words": "notalist"})
	assert.True(errors.As(err, &ice))
}

func TestValidateSpam(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := Default()

	cfg, err := r.ValidateConfig(KindMessageSpam, map[string]any{
		"threshold":   float64(5),
		"window_size": float64(5000),
	})
	require.NoError(err)
	sc, ok := cfg.(SpamConfig)
	require.True(ok)
	assert.Equal(5, sc.Threshold)
	assert.Equal(5*time.Second, sc.Window)
	assert.True(sc.ResetOnFire)

	// window as duration string
	cfg, err = r.ValidateConfig(KindMessageSpam, map[string]any{
		"threshold":   float64(3),
		"window_size": "10s",
		"cooldown":    "1m",
	})
	require.NoError(err)
	sc = cfg.(SpamConfig)
	assert.Equal(10*time.Second, sc.Window)
	assert.Equal(time.Minute, sc.Cooldown())

	var ice *InvalidConfigError
	_, err = r.ValidateConfig(KindMessageSpam, map[string]any{"threshold": float64(0), "window_size": float64(5000)})
	assert.True(errors.As(err, &ice), "threshold below 1")

	_, err = r.ValidateConfig(KindMessageSpam, map[string]any{"threshold": float64(5)})
	assert.True(errors.As(err, &ice), "missing window")

	_, err = r.ValidateConfig(KindMessageSpam, map[string]any{"threshold": float64(5), "window_size": float64(5000), "baseline": float64(10)})
	assert.True(errors.As(err, &ice), "baseline only valid for character_spam")

	_, err = r.ValidateConfig(KindCharacterSpam, map[string]any{"threshold": float64(500), "window_size": float64(5000), "baseline": float64(10)})
	assert.NoError(err)
}

func TestValidateRegex(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := Default()

	cfg, err := r.ValidateConfig(KindMatchRegex, map[string]any{
		"patterns": []any{`\bfree\s+nitro\b`},
	})
	require.NoError(err)
	rc := cfg.(RegexConfig)
	assert.Len(rc.Patterns, 1)
	assert.Equal(DefaultMatchBudget, rc.MatchBudget)

	var ice *InvalidConfigError
	_, err = r.ValidateConfig(KindMatchRegex, map[string]any{"patterns": []any{`(unclosed`}})
	assert.True(errors.As(err, &ice), "malformed pattern")

	_, err = r.ValidateConfig(KindMatchRegex, map[string]any{"patterns": []any{}})
	assert.True(errors.As(err, &ice), "empty pattern list")

	_, err = r.ValidateConfig(KindMatchRegex, map[string]any{"patterns": []any{`a*`}})
	assert.True(errors.As(err, &ice), "pattern matching empty string")
}

func TestValidateLinks(t *testing.T) {
	assert := assert.New(t)

	r := Default()

	_, err := r.ValidateConfig(KindMatchLinks, map[string]any{})
	assert.NoError(err, "empty blocklist matches every link")

	var ice *InvalidConfigError
	_, err = r.ValidateConfig(KindMatchLinks, map[string]any{"whitelist": true})
	assert.True(errors.As(err, &ice), "whitelist mode needs domains")
}
