package query_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/JaimeStill/cadence/pkg/query"
)

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "campaigns", "c").
		Project("id", "ID").
		Project("campaign_name", "Name").
		Project("send_date", "SendDate")
}

func TestBuild(t *testing.T) {
	sql, args := query.NewBuilder(projection(), query.SortField{Field: "Name"}).Build()

	want := "SELECT c.id, c.campaign_name, c.send_date FROM public.campaigns c ORDER BY c.campaign_name ASC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args: got %v", args)
	}
}

func TestBuildPageWithConditions(t *testing.T) {
	search := "acne"
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var before *time.Time

	b := query.NewBuilder(projection()).
		WhereSearch(&search, "Name").
		WhereSince("SendDate", &since).
		WhereBefore("SendDate", before).
		OrderByFields([]query.SortField{{Field: "SendDate", Descending: true}})

	sql, args := b.BuildPage(2, 10)

	want := "SELECT c.id, c.campaign_name, c.send_date FROM public.campaigns c" +
		" WHERE (c.campaign_name ILIKE $1) AND c.send_date >= $2" +
		" ORDER BY c.send_date DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 2 || args[0] != "%acne%" {
		t.Errorf("args: got %v", args)
	}

	count, countArgs := b.BuildCount()
	wantCount := "SELECT COUNT(*) FROM public.campaigns c WHERE (c.campaign_name ILIKE $1) AND c.send_date >= $2"
	if count != wantCount {
		t.Errorf("count:\n got %s\nwant %s", count, wantCount)
	}
	if !reflect.DeepEqual(args, countArgs) {
		t.Errorf("count args differ: %v vs %v", args, countArgs)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	search := "x"
	sql, args := query.NewBuilder(projection()).
		WhereEquals("name; DROP TABLE campaigns", "x").
		WhereSearch(&search, "Missing").
		OrderByFields(query.ParseSortFields("-bogus")).
		Build()

	want := "SELECT c.id, c.campaign_name, c.send_date FROM public.campaigns c"
	if sql != want {
		t.Errorf("sql: got %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args: got %v", args)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	search := "50%_off"
	_, args := query.NewBuilder(projection()).WhereSearch(&search, "Name").Build()

	if args[0] != `%50\%\_off%` {
		t.Errorf("pattern: got %v", args[0])
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(projection()).BuildSingle("ID", "abc")

	want := "SELECT c.id, c.campaign_name, c.send_date FROM public.campaigns c WHERE c.id = $1"
	if sql != want {
		t.Errorf("sql: got %s", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args: got %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields("Name, -SendDate,,")
	want := []query.SortField{
		{Field: "Name"},
		{Field: "SendDate", Descending: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if query.ParseSortFields("") != nil {
		t.Error("empty input should return nil")
	}
}
