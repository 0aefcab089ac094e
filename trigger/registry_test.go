package trigger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildmod/guildmod/event"
)

func TestRegistryBasics(t *testing.T) {
	assert := assert.New(t)

	r := Default()

	s, err := r.Get(KindMatchWords)
	assert.NoError(err)
	assert.Equal(KindMatchWords, s.Kind)
	assert.False(s.Windowed())

	s, err = r.Get(KindMessageSpam)
	assert.NoError(err)
	assert.True(s.Windowed())

	_, err = r.Get("no_such_kind")
	assert.True(errors.Is(err, ErrUnknownKind))

	// registration is closed after startup
	err = r.Register(&Spec{Kind: "late_kind", Match: matchMemberJoin, Validate: validateMemberJoin})
	assert.Error(err)
}

func TestRegistryRegisterChecks(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry()
	spec := &Spec{
		Kind:     KindMemberJoin,
		Accepts:  []event.Kind{event.KindMemberJoin},
		Validate: validateMemberJoin,
		Match:    matchMemberJoin,
	}
	assert.NoError(r.Register(spec))
	assert.Error(r.Register(spec), "duplicate registration")

	assert.Error(r.Register(&Spec{Kind: "both", Validate: validateMemberJoin, Match: matchMemberJoin, MatchWindowed: matchSpam(KindMessageSpam)}))
	assert.Error(r.Register(&Spec{Kind: "neither", Validate: validateMemberJoin}))
}

func TestRegistryCatalogComplete(t *testing.T) {
	require := require.New(t)

	r := Default()
	for _, kind := range []Kind{
		KindMatchWords, KindMatchRegex, KindMatchInvites, KindMatchLinks,
		KindMatchAttachmentType, KindMemberJoin, KindRoleAdded, KindRoleRemoved,
		KindMessageSpam, KindMentionSpam, KindLinkSpam, KindAttachmentSpam,
		KindEmojiSpam, KindLineSpam, KindCharacterSpam, KindMemberJoinSpam,
	} {
		s, err := r.Get(kind)
		require.NoError(err)
		require.NotNil(s.Validate)
		require.NotEmpty(s.Accepts)
	}
}
