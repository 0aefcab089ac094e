package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildmod/guildmod/trigger"
)

func TestCooldowns(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cd := NewCooldowns()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	claim, ok := cd.Claim("g1", "a1", trigger.KindMessageSpam, base)
	require.True(ok)
	claim.Fire(base.Add(10 * time.Second))

	_, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base)
	assert.False(ok)
	_, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base.Add(9*time.Second))
	assert.False(ok)

	claim, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base.Add(10*time.Second))
	require.True(ok, "cooldown has lapsed")
	claim.Release()

	// releasing without firing leaves the key open
	claim, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base.Add(10*time.Second))
	require.True(ok)
	claim.Release()

	// independent per actor and per kind
	claim, ok = cd.Claim("g1", "a2", trigger.KindMessageSpam, base)
	require.True(ok)
	claim.Release()
	claim, ok = cd.Claim("g1", "a1", trigger.KindLinkSpam, base)
	require.True(ok)
	claim.Release()
}

func TestCooldownsSweep(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cd := NewCooldowns()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	claim, ok := cd.Claim("g1", "a1", trigger.KindMessageSpam, base)
	require.True(ok)
	claim.Fire(base.Add(10 * time.Second))

	// sweeping before expiry keeps the suppression in place
	cd.Sweep(base.Add(5 * time.Second))
	_, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base)
	assert.False(ok)

	cd.Sweep(base.Add(time.Minute))
	claim, ok = cd.Claim("g1", "a1", trigger.KindMessageSpam, base)
	require.True(ok, "expired entry was evicted")
	claim.Release()
}
