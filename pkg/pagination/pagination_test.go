package pagination

import (
	"testing"
	"time"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		in   PaginationParams
		want PaginationParams
	}{
		{PaginationParams{}, PaginationParams{Page: 1, PerPage: 15}},
		{PaginationParams{Page: -3, PerPage: 500}, PaginationParams{Page: 1, PerPage: 100}},
		{PaginationParams{Page: 4, PerPage: 20}, PaginationParams{Page: 4, PerPage: 20}},
	}
	for _, tt := range tests {
		got := tt.in
		got.Validate()
		if got != tt.want {
			t.Errorf("Validate(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	p := PaginationParams{Page: 3, PerPage: 20}
	if p.Offset() != 40 {
		t.Errorf("Offset = %d, want 40", p.Offset())
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	if p.TotalPages != 3 || !p.HasNext || !p.HasPrev {
		t.Errorf("unexpected pagination %+v", p)
	}

	last := NewPagination(3, 10, 25)
	if last.HasNext {
		t.Error("last page should not have next")
	}

	empty := NewPagination(1, 0, 0)
	if empty.TotalPages != 0 || empty.HasNext {
		t.Errorf("zero per-page should not divide by zero: %+v", empty)
	}
}

type row struct {
	id      string
	created time.Time
}

func TestNewCursorPagination(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{"a", base},
		{"b", base.Add(time.Minute)},
		{"c", base.Add(2 * time.Minute)},
	}

	meta, items := NewCursorPagination(rows, 2,
		func(r row) string { return r.id },
		func(r row) time.Time { return r.created })

	if len(items) != 2 || !meta.HasNext {
		t.Fatalf("expected trimmed page with more results, got %d items %+v", len(items), meta)
	}
	if meta.NextCursor == nil {
		t.Fatal("expected next cursor")
	}

	params := CursorParams{Cursor: *meta.NextCursor}
	cursor, err := params.DecodeCursor()
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if cursor.ID != "b" || !cursor.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("cursor = %+v", cursor)
	}
}

func TestCursorParams_DecodeInvalid(t *testing.T) {
	params := CursorParams{Cursor: "%%%"}
	if _, err := params.DecodeCursor(); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}

func TestUnifiedPaginationParams(t *testing.T) {
	u := UnifiedPaginationParams{PerPage: 30}
	if u.IsCursorBased() {
		t.Fatal("page params should not be cursor based")
	}
	if c := u.ToCursorParams(); c.Limit != 30 || c.Direction != CursorDirectionNext {
		t.Errorf("ToCursorParams = %+v", c)
	}

	u = UnifiedPaginationParams{Cursor: "abc"}
	if !u.IsCursorBased() {
		t.Fatal("cursor params should be cursor based")
	}
}

func TestNewUnifiedPaginatedResultFromCursor(t *testing.T) {
	next := "c2"
	got := NewUnifiedPaginatedResultFromCursor([]string{"a", "b"}, &CursorPagination{NextCursor: &next, HasNext: true, Limit: 2})
	if len(got.Items) != 2 || got.NextCursor == nil || *got.NextCursor != "c2" {
		t.Fatalf("unexpected result %+v", got)
	}
	if !got.HasNext || got.HasPrev || got.PerPage != 2 {
		t.Errorf("flags = next %v prev %v per page %d", got.HasNext, got.HasPrev, got.PerPage)
	}
}
