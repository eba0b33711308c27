package repository

import (
	"testing"
)

func TestQueryBuilderEmpty(t *testing.T) {
	var b queryBuilder
	if got := b.whereClause(); got != "" {
		t.Fatalf("empty builder must render no WHERE, got %q", got)
	}
	if got := b.tail(); got != "" {
		t.Fatalf("empty builder must render no tail, got %q", got)
	}
}

func TestQueryBuilderEqualAndBindOrder(t *testing.T) {
	var b queryBuilder
	b.equal("city", "Dhaka")
	b.equal("district", "") // empty values add nothing
	b.equal("status", "active")

	want := " WHERE city = $1 AND status = $2"
	if got := b.whereClause(); got != want {
		t.Fatalf("where = %q, want %q", got, want)
	}
	if len(b.args) != 2 || b.args[0] != "Dhaka" || b.args[1] != "active" {
		t.Fatalf("unexpected args: %v", b.args)
	}
}

func TestQueryBuilderFreeTextSharesOneBinding(t *testing.T) {
	var b queryBuilder
	b.freeText("rahim", "name", "phone_number", "email")

	want := " WHERE (name ILIKE $1 OR phone_number ILIKE $1 OR email ILIKE $1)"
	if got := b.whereClause(); got != want {
		t.Fatalf("where = %q, want %q", got, want)
	}
	if len(b.args) != 1 || b.args[0] != "%rahim%" {
		t.Fatalf("free text must bind one wrapped pattern, got %v", b.args)
	}

	var empty queryBuilder
	empty.freeText("", "name")
	if got := empty.whereClause(); got != "" {
		t.Fatalf("empty query must add nothing, got %q", got)
	}
}

func TestQueryBuilderRanges(t *testing.T) {
	min, max := 20000.0, 50000.0
	var b queryBuilder
	b.rangeFloat("rent_amount", &min, &max)

	three := 3
	b.rangeInt("bedrooms", &three, nil)

	want := " WHERE rent_amount >= $1 AND rent_amount <= $2 AND bedrooms >= $3"
	if got := b.whereClause(); got != want {
		t.Fatalf("where = %q, want %q", got, want)
	}
	if len(b.args) != 3 {
		t.Fatalf("expected 3 args, got %v", b.args)
	}
}

func TestQueryBuilderSortAllowList(t *testing.T) {
	allowed := map[string]string{"rent": "rent_amount", "name": "name"}

	var b queryBuilder
	b.sort("rent", "asc", allowed)
	if b.orderBy != "rent_amount ASC" {
		t.Fatalf("orderBy = %q", b.orderBy)
	}

	b.sort("name", "bogus", allowed)
	if b.orderBy != "name DESC" {
		t.Fatalf("unknown direction must fall back to DESC, got %q", b.orderBy)
	}

	b.sort("password_hash; DROP TABLE users", "ASC", allowed)
	if b.orderBy != "created_at DESC" {
		t.Fatalf("unknown sort keys must fall back to created_at DESC, got %q", b.orderBy)
	}
}

func TestQueryBuilderPaginate(t *testing.T) {
	cases := []struct {
		page, limit           int
		wantLimit, wantOffset int
	}{
		{0, 0, 10, 0},     // defaults
		{1, 10, 10, 0},    // first page
		{3, 10, 10, 20},   // skip = (page-1)*limit
		{2, 500, 100, 100}, // limit capped
		{-5, -5, 10, 0},   // nonsense falls back to defaults
	}
	for _, c := range cases {
		var b queryBuilder
		b.paginate(c.page, c.limit)
		if b.limit != c.wantLimit || b.offset != c.wantOffset {
			t.Fatalf("paginate(%d,%d) = limit %d offset %d, want %d/%d",
				c.page, c.limit, b.limit, b.offset, c.wantLimit, c.wantOffset)
		}
	}
}

func TestQueryBuilderTail(t *testing.T) {
	var b queryBuilder
	b.sort("", "", map[string]string{})
	b.paginate(2, 25)

	want := " ORDER BY created_at DESC LIMIT 25 OFFSET 25"
	if got := b.tail(); got != want {
		t.Fatalf("tail = %q, want %q", got, want)
	}
}
