package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults on zero", 0, 0, DefaultLimit, 0},
		{"negative limit", -5, 10, DefaultLimit, 10},
		{"negative offset", 30, -1, 30, 0},
		{"capped at max", 10000, 0, MaxLimit, 0},
		{"passes through valid", 50, 100, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.limit, tt.offset)
			if got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("Normalize(%d, %d) = %+v, want limit %d offset %d",
					tt.limit, tt.offset, got, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestNewResponseHasMore(t *testing.T) {
	if r := NewResponse(nil, 100, 20, 0); !r.HasMore {
		t.Error("first of five pages must report more results")
	}
	if r := NewResponse(nil, 100, 20, 80); r.HasMore {
		t.Error("last page must not report more results")
	}
	if r := NewResponse(nil, 0, 20, 0); r.HasMore {
		t.Error("empty result must not report more results")
	}
}

func TestOffsetNavigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}

	if !p.HasNext(100) {
		t.Error("HasNext(100) = false, want true")
	}
	if p.HasNext(60) {
		t.Error("HasNext(60) = true, want false")
	}
	if !p.HasPrevious() {
		t.Error("HasPrevious() = false, want true")
	}
	if got := p.NextOffset(); got != 60 {
		t.Errorf("NextOffset() = %d, want 60", got)
	}
	if got := p.PreviousOffset(); got != 20 {
		t.Errorf("PreviousOffset() = %d, want 20", got)
	}

	first := Params{Limit: 20, Offset: 10}
	if got := first.PreviousOffset(); got != 0 {
		t.Errorf("PreviousOffset() = %d, want clamp to 0", got)
	}
}
