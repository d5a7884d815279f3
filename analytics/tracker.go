package analytics

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	influxdb2 "github.com/influxdata/influxdb-client-go"

	"bookswap-api/database"
	"bookswap-api/helpers"
)

// Tracker stores profile visits and catalog searches in the analytics cache
// (influxDB, TTL-bounded bucket). redis arbitrates daily uniqueness per
// visitor. disabled via USE_ANALYTICS so tests and local setups run without
// the stores
type Tracker struct {
	influxClient influxdb2.Client
	redisClient  *redis.Client
	VisitorAPI   database.InfluxAPI
	SearchAPI    database.InfluxAPI
	GetUserName  func(ID string) (string, error)
}

type Visit struct {
	VisitTS  time.Time `json:"visitTS"`
	ObjectID string
	UserID   string `json:"userID"`
	UserName string `json:"userName"`
}

// SetConnections initializes the instance
func (t *Tracker) SetConnections(influxClient *influxdb2.Client, redisClient *redis.Client) {
	t.influxClient = *influxClient
	t.redisClient = redisClient
}

// firstVisitToday registers the visit in the cache and reports whether it is
// the user's first one for this profile today. the keys expire on their own
func (t *Tracker) firstVisitToday(domain string, profileID string, userID string) bool {

	key := "visit_" + domain + "_" + profileID + "_" + userID

	first, err := t.redisClient.SetNX(context.Background(),
		key, time.Now().Format(time.RFC3339), 24*time.Hour).Result()
	if err != nil {
		// cache trouble must not block the request, count the visit
		return true
	}

	return first
}

// SaveVisitor stores event data in the analytics cache.
// a signed-in user counts once per profile and day, arbitrated through redis;
// anonymous visits are counted as they come
func (t *Tracker) SaveVisitor(domain string, profileID string, userID string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	if userID != "" && !t.firstVisitToday(domain, profileID, userID) {
		return
	}

	// include object type (domain) in key name,
	// so this information can be "wrapped" in aggregation queries

	// the risk of high series cardinality is accepted, since profiles is what we're interested in
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/

	p := influxdb2.NewPoint(
		"visit",
		map[string]string{"profileId": domain + "_" + profileID},
		map[string]interface{}{"userId": userID},
		time.Now())

	_ = t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)
}

// SaveSearch stores catalog search events
func (t *Tracker) SaveSearch(keyword string, resultCount int) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// do not log any empty search (plain listing)
	if keyword == "" {
		return
	}

	fields := map[string]interface{}{
		"term":    keyword,
		"results": resultCount}

	p := influxdb2.NewPoint(
		"search",
		map[string]string{"domain": "book"},
		fields,
		time.Now())

	_ = t.SearchAPI.WriteAPI.WritePoint(context.Background(), p)
}

// GetVisits counts the number of visits of a profile
// the value is "live" - read from the analytics cache which is set to a
// maximum period (TTL) of 30 days
func (t *Tracker) GetVisits(domain string, profileID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["profileId"] == "%s")
		|> count()
		|> yield(name: "count")`

	id := domain + "_" + profileID
	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		id)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// just 1 record
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListVisitors returns the 10 most recent visitors of a profile
// (only the last visit per user)
func (t *Tracker) ListVisitors(profileID string, startDT time.Time) ([]Visit, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `import "strings"
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and strings.containsStr(substr: "%s", v: r.profileId))
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		profileID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var visit Visit
	var visits []Visit
	for result.Next() {
		visit.VisitTS = result.Record().Time()
		visit.ObjectID = profileID
		if result.Record().Value() == nil {
			visit.UserID = ""
			visit.UserName = ""
		} else {
			visit.UserID = result.Record().Value().(string)
			visit.UserName, _ = t.GetUserName(visit.UserID)
		}

		visits = append(visits, visit)
	}

	// the flux query sorts correctly, the received slice does not
	sort.Slice(visits, func(i, j int) bool {
		return visits[j].VisitTS.Before(visits[i].VisitTS)
	})

	return visits, nil
}

// PurgeVisits drops visit points older than the given time.
// the bucket carries a retention period anyway, so this is for manual
// cleanups (eg. after load tests)
func (t *Tracker) PurgeVisits(before time.Time) error {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := t.VisitorAPI.DeleteAPI.DeleteWithName(ctx,
		os.Getenv("ANALYTICS_ORG"),
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		time.Unix(0, 0), before,
		`_measurement="visit"`)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}
