package lyrics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ReadUpload(t *testing.T) {
	t.Parallel()

	s := NewService()

	t.Run("text file", func(t *testing.T) {
		t.Parallel()

		res, err := s.ReadUpload("song.txt", strings.NewReader("[Verse]\nHi"))
		require.NoError(t, err)
		assert.Equal(t, "[Verse]\nHi", res.Text)
		assert.Equal(t, "song.txt", res.Name)
		assert.Equal(t, "upload", res.Source)
	})

	t.Run("markdown file with byte order mark", func(t *testing.T) {
		t.Parallel()

		res, err := s.ReadUpload("Song.MD", strings.NewReader("\uFEFF# Title"))
		require.NoError(t, err)
		assert.Equal(t, "# Title", res.Text)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := s.ReadUpload("song.pdf", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("binary content", func(t *testing.T) {
		t.Parallel()

		_, err := s.ReadUpload("song.txt", bytes.NewReader([]byte{0xff, 0xfe, 0xfd}))
		require.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := s.ReadUpload("big.txt", bytes.NewReader(bytes.Repeat([]byte("a"), MaxUploadSize+1)))
		require.ErrorIs(t, err, ErrFileTooLarge)

		res, err := s.ReadUpload("edge.txt", bytes.NewReader(bytes.Repeat([]byte("a"), MaxUploadSize)))
		require.NoError(t, err)
		assert.Len(t, res.Text, MaxUploadSize)
	})
}

func TestService_ExtractLyrics(t *testing.T) {
	t.Parallel()

	t.Run("unsupported source", func(t *testing.T) {
		t.Parallel()

		_, err := NewService().ExtractLyrics(context.Background(), "https://example.com/song")
		require.ErrorIs(t, err, ErrUnsupportedSource)
	})

	t.Run("amdm page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><pre itemprop="chordsBlock"><div class="podbor__keyword">[Припев]:</div>
<div class="podbor__chord" data-chord="Am">Am</div> <div class="podbor__chord" data-chord="G">G</div>
Ла-ла-ла
</pre></body></html>`))
		}))
		defer server.Close()

		res, err := NewService().ExtractLyrics(context.Background(), server.URL+"/akkordi/amdm.ru/song")
		require.NoError(t, err)
		assert.Equal(t, "amdm.ru", res.Source)
		assert.False(t, res.FetchedAt.IsZero())

		sections := Parse(res.Text)
		require.Len(t, sections, 1)
		assert.Equal(t, "[Chorus]", sections[0].Label)
		require.Len(t, sections[0].Lines, 1)
		assert.Equal(t, "Am G", strings.TrimSpace(sections[0].Lines[0].Chords))
		assert.Equal(t, "Ла-ла-ла", sections[0].Lines[0].Lyric)
	})
}
