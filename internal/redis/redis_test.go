package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricforge/internal/editor"
)

func TestSessionKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "session:42", sessionKey(42))
	assert.Equal(t, "session:-1001", sessionKey(-1001))
}

func TestEncodeDecodeSession(t *testing.T) {
	t.Parallel()

	doc := editor.FromText("Road", "[Chorus]\nG D\nkeep on driving")
	doc.Details.Key = "G"

	payload, err := encodeSession(doc.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"v":1`)

	snap, err := decodeSession(payload)
	require.NoError(t, err)
	require.NotNil(t, snap)

	restored := editor.Restore(*snap)
	assert.Equal(t, "Road", restored.Title)
	assert.Equal(t, "G", restored.Details.Key)
	assert.Equal(t, doc.Text(), restored.Text())
}

func TestDecodeSession_VersionMismatch(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"future version": `{"v":2,"data":{"title":"x","sections":[]}}`,
		"no version":     `{"data":{"title":"x"}}`,
		"no data":        `{"v":1}`,
	}
	for name, payload := range tests {
		payload := payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			snap, err := decodeSession([]byte(payload))
			require.NoError(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestDecodeSession_Garbage(t *testing.T) {
	t.Parallel()

	_, err := decodeSession([]byte("not json"))
	assert.Error(t, err)
}

func TestNewDBManager_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewDBManager("http://nope", 0)
	assert.Error(t, err)

	m, err := NewDBManager("redis://localhost:6379/0", 0)
	require.NoError(t, err)
	assert.NoError(t, m.Close())
}
