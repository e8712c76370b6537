package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDocument_DecodesStringData(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"url": "epl_1.xml", "data": "<squawka/>"})
	require.NoError(t, err)

	var d Document
	require.NoError(t, bson.Unmarshal(raw, &d))
	assert.Equal(t, "epl_1.xml", d.URL)
	assert.Equal(t, []byte("<squawka/>"), d.Data)
}

// TestStore_RoundTrip needs a live server; set SQUAWKA_TEST_MONGO_URI to run it.
func TestStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("SQUAWKA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SQUAWKA_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, uri, "squawka_test", "docs_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		s.coll.Drop(context.Background())
		s.Close(context.Background())
	})

	require.NoError(t, s.InsertDocument(ctx, "b.xml", []byte("<b/>"), time.Now()))
	require.NoError(t, s.InsertDocument(ctx, "a.xml", []byte("<a/>"), time.Now()))
	require.NoError(t, s.InsertDocument(ctx, "a.xml", []byte("<a2/>"), time.Now()))

	ok, err := s.DocumentExists(ctx, "a.xml")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DocumentExists(ctx, "c.xml")
	require.NoError(t, err)
	assert.False(t, ok)

	var urls []string
	var data []string
	err = s.EachDocument(ctx, func(url string, d []byte) error {
		urls = append(urls, url)
		data = append(data, string(d))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml", "b.xml"}, urls)
	assert.Equal(t, []string{"<a2/>", "<b/>"}, data)
}
