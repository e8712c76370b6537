package feed

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `<squawka><data_panel><game><venue>Anfield</venue></game></data_panel></squawka>`

func gzipped(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, b []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(b, nil)
}

func TestDecompress(t *testing.T) {
	plain := []byte(doc)

	out, err := Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	out, err = Decompress(gzipped(t, plain))
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	out, err = Decompress(zstded(t, plain))
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	// already decompressed data passes through a second time
	out, err = Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	_, err = Decompress(append([]byte{0x1f, 0x8b}, "not gzip"...))
	assert.Error(t, err)
}

func TestParse_Compressed(t *testing.T) {
	for name, data := range map[string][]byte{
		"plain": []byte(doc),
		"gzip":  gzipped(t, []byte(doc)),
		"zstd":  zstded(t, []byte(doc)),
	} {
		n, err := Parse(data)
		require.NoError(t, err, name)
		assert.Equal(t, "Anfield", n.SelectElement("//venue").InnerText(), name)
	}
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epl_1.xml.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, []byte(doc)), 0o644))

	n, err := NewLoader(time.Second).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Anfield", n.SelectElement("//venue").InnerText())
}

func TestLoader_HTTP(t *testing.T) {
	served := zstded(t, []byte(doc))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write(served)
	}))
	defer srv.Close()

	l := NewLoader(time.Second)
	data, err := l.Fetch(context.Background(), srv.URL+"/dp/ingame/1")
	require.NoError(t, err)
	assert.Equal(t, served, data, "fetched bytes are returned as served")

	n, err := l.Load(context.Background(), srv.URL+"/dp/ingame/1")
	require.NoError(t, err)
	assert.Equal(t, "Anfield", n.SelectElement("//venue").InnerText())

	_, err = l.Fetch(context.Background(), srv.URL+"/missing")
	assert.True(t, errors.Is(err, ErrHTTPStatus))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://s3-irl-epl.squawka.com/dp/ingame/1"))
	assert.True(t, IsURL("https://example.org/a.xml"))
	assert.False(t, IsURL("data/epl_1.xml"))
}

func TestMatchURL(t *testing.T) {
	assert.Equal(t, "http://s3-irl-epl.squawka.com/dp/ingame/4071", MatchURL("epl", "4071"))
}
