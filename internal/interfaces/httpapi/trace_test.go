package httpapi

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.GetDailyRanking", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNonEmptyAttrs(t *testing.T) {
	got := nonEmptyAttrs([]attribute.KeyValue{
		attribute.String("stats.nickname", "alice"),
		attribute.String("stats.board", " "),
		attribute.Int("stats.limit", 10),
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 attributes, got %d: %+v", len(got), got)
	}
	if got[0].Key != "stats.nickname" || got[1].Key != "stats.limit" {
		t.Fatalf("unexpected attributes: %+v", got)
	}
}
