package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPaginator_Defaults(t *testing.T) {
	p := Paginator{}
	opts := p.FindOptions()

	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(defaultLimit), *opts.Limit)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(0), *opts.Skip)

	// newest first unless the client asks otherwise
	sort, ok := opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 1)
	assert.Equal(t, "_id", sort[0].Key)
	assert.Equal(t, int32(-1), sort[0].Value)
}

func TestPaginator_GivenValues(t *testing.T) {
	p := Paginator{Skip: 20, Limit: 5, SortBy: "title", SortDir: 1}
	opts := p.FindOptions()

	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(5), *opts.Limit)

	sort := opts.Sort.(bson.D)
	assert.Equal(t, "title", sort[0].Key)
	assert.Equal(t, int32(1), sort[0].Value)
}

func TestPaginator_InvalidSortDir(t *testing.T) {
	p := Paginator{SortDir: 5}
	opts := p.FindOptions()

	sort := opts.Sort.(bson.D)
	assert.Equal(t, int32(-1), sort[0].Value)
}

func TestPaginator_KeywordFilter(t *testing.T) {
	p := Paginator{Keyword: "Tolkien"}
	filter := p.KeywordFilter("title", "author")

	require.Len(t, filter, 1)
	assert.Equal(t, "$or", filter[0].Key)

	or, ok := filter[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	first := or[0].(bson.D)
	assert.Equal(t, "title", first[0].Key)

	regex, ok := first[0].Value.(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, ".*Tolkien.*", regex.Pattern)
	assert.Equal(t, "i", regex.Options)
}

func TestPaginator_EmptyKeyword(t *testing.T) {
	p := Paginator{}

	// must match everything and not produce an empty $or (illegal in mongo)
	assert.Empty(t, p.KeywordFilter("title", "author"))
}
