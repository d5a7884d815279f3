package helpers

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginator holds the generic list-query parameters used by all list endpoints.
// skip/limit only - no cursor-based paging (accepted ceiling at this scale)
type Paginator struct {
	Skip    int64
	Limit   int64
	SortBy  string
	SortDir int32  // 1 asc, -1 desc
	Keyword string // optional, case-insensitive
}

// default page size if the client sends none
const defaultLimit = 10

// FindOptions builds the driver options for a page.
// default sort: creation time descending (via _id, since the OID carries the timestamp)
func (p *Paginator) FindOptions() *options.FindOptions {

	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "_id"
	}

	dir := p.SortDir
	if dir != 1 && dir != -1 {
		dir = -1
	}

	sort := bson.D{
		{Key: sortBy, Value: dir},
	}

	return options.Find().SetSkip(p.Skip).SetLimit(limit).SetSort(sort)
}

// KeywordFilter returns a $or filter matching the keyword against the given
// text fields, LIKE %keyword% (case-insensitive).
// an empty keyword yields an empty filter so every document matches
func (p *Paginator) KeywordFilter(fields ...string) bson.D {

	if p.Keyword == "" {
		return bson.D{}
	}

	var or bson.A
	for _, f := range fields {
		or = append(or, bson.D{
			{Key: f, Value: primitive.Regex{Pattern: ".*" + p.Keyword + ".*", Options: "i"}},
		})
	}

	return bson.D{{Key: "$or", Value: or}}
}
