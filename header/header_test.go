// SPDX-License-Identifier: ice License 1.0

package header_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ice-blockchain/wshandshake/header"
)

func TestOneRoundTrip(t *testing.T) {
	t.Parallel()
	for _, value := range []string{"foo bar", "http://example.com", "dGhlIHNhbXBsZSBub25jZQ==", "13", "héllo wörld"} {
		origin, ok := header.ParseOrigin([]string{value})
		require.True(t, ok)
		assert.Equal(t, []byte(value), origin.Bytes())
	}
}

func TestOneRejectsZeroOrMultipleOccurrences(t *testing.T) {
	t.Parallel()
	_, ok := header.ParseOrigin(nil)
	assert.False(t, ok)
	_, ok = header.ParseOrigin([]string{})
	assert.False(t, ok)
	_, ok = header.ParseOrigin([]string{"http://a.com", "http://b.com"})
	assert.False(t, ok)
	_, ok = header.ParseKey([]string{"a", "b", "c"})
	assert.False(t, ok)
}

func TestOneRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()
	_, ok := header.ParseOrigin([]string{string([]byte{0xff, 0xfe})})
	assert.False(t, ok)
}

func TestOneEquality(t *testing.T) {
	t.Parallel()
	a, ok := header.ParseOrigin([]string{"http://Example.com"})
	require.True(t, ok)
	b, ok := header.ParseOrigin([]string{"http://Example.com"})
	require.True(t, ok)
	c, ok := header.ParseOrigin([]string{"http://example.com"})
	require.True(t, ok)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParseTokens(t *testing.T) {
	t.Parallel()
	assert.Nil(t, header.ParseTokens(nil))
	assert.NotNil(t, header.ParseTokens([]string{""}))
	assert.Empty(t, header.ParseTokens([]string{""}))
	assert.Equal(t, header.Tokens{"keep-alive", "Upgrade"}, header.ParseTokens([]string{"keep-alive, Upgrade"}))
	assert.Equal(t, header.Tokens{"a", "b", "c"}, header.ParseTokens([]string{"a, b", "c"}))
}

func TestTokensContainsIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	tokens := header.ParseTokens([]string{"keep-alive, upgrade"})
	assert.True(t, tokens.Contains("Upgrade"))
	assert.True(t, tokens.Contains("upgrade"))
	assert.True(t, tokens.Contains("KEEP-ALIVE"))
	assert.False(t, tokens.Contains("websocket"))
}

func TestParseProtocol(t *testing.T) {
	t.Parallel()
	assert.Nil(t, header.ParseProtocol(nil))
	assert.Equal(t, header.Protocol{"chat", "superchat"}, header.ParseProtocol([]string{"chat, superchat"}))
}

func TestParseExtensions(t *testing.T) {
	t.Parallel()
	assert.Nil(t, header.ParseExtensions(nil))
	exts := header.ParseExtensions([]string{"permessage-deflate; client_max_window_bits, x-custom"})
	require.Len(t, exts, 2)
	assert.Equal(t, "permessage-deflate", string(exts[0].Name))
	assert.Equal(t, "x-custom", string(exts[1].Name))
}
