package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_SendsMultipart(t *testing.T) {
	var gotModel, gotName, gotAuth string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotName = hdr.Filename
		gotData, _ = io.ReadAll(f)
		_, _ = w.Write([]byte(`{"text":"  buy milk and call mom  "}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k", Model: "whisper-large-v3"}, nil)
	tr, err := c.Transcribe(context.Background(), Audio{Filename: "memo.webm", Data: []byte("RIFF")})

	require.NoError(t, err)
	assert.Equal(t, "buy milk and call mom", tr.Text)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "whisper-large-v3", gotModel)
	assert.Equal(t, "memo.webm", gotName)
	assert.Equal(t, []byte("RIFF"), gotData)
}

func TestTranscribe_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			c := NewClient(Config{Endpoint: srv.URL, APIKey: "k"}, nil)
			_, err := c.Transcribe(context.Background(), Audio{Filename: "a.webm", Data: []byte("x")})

			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestTranscribe_RejectsBeforeCalling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k", MaxBytes: 4}, nil)
	_, err := c.Transcribe(context.Background(), Audio{Data: []byte("12345")})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = c.Transcribe(context.Background(), Audio{})
	assert.ErrorIs(t, err, ErrEmptyAudio)

	noKey := NewClient(Config{Endpoint: srv.URL}, nil)
	_, err = noKey.Transcribe(context.Background(), Audio{Data: []byte("1")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, 0, calls)
}

func TestStore_Save(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.Now = func() time.Time { return time.UnixMilli(1700000000123) }

	ref, err := s.Save("user-1", Audio{Filename: "../my memo.webm", Data: []byte("abc")})

	require.NoError(t, err)
	assert.Equal(t, "user-1/1700000000123-my_memo.webm", ref)
	data, err := os.ReadFile(filepath.Join(dir, "user-1", "1700000000123-my_memo.webm"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}
