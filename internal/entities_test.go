package internal

import (
	"reflect"
	"testing"
)

func TestExtractEntitiesKinds(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{
			"Met Alice about API redesign, decided GraphQL",
			[]string{"Alice", "API", "GraphQL"},
		},
		{
			"Alice prefers GraphQL over REST",
			[]string{"Alice", "GraphQL", "REST"},
		},
		{
			"Talked to John Smith about the HTTP rollout",
			[]string{"John Smith", "HTTP"},
		},
		{
			"Deployed OpenTelemetry alongside PostgreSQL",
			[]string{"OpenTelemetry", "PostgreSQL"},
		},
		{
			"nothing capitalized here at all",
			nil,
		},
	}

	for _, tc := range cases {
		got := ExtractEntities(tc.text)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractEntities(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestExtractEntitiesSentenceCase(t *testing.T) {
	// Sentence-initial common words carry no entity signal.
	got := ExtractEntities("The deploy failed. This broke everything.")
	if len(got) != 0 {
		t.Errorf("expected no entities, got %v", got)
	}
}

func TestExtractEntitiesDedup(t *testing.T) {
	got := ExtractEntities("Kafka feeds Kafka consumers via Kafka topics")
	want := []string{"Kafka"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractEntitiesOrder(t *testing.T) {
	got := ExtractEntities("Compared Redis with SQLite and then Redis again")
	want := []string{"Redis", "SQLite"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected first-occurrence order %v, got %v", want, got)
	}
}

func TestExtractEntitiesDeterministic(t *testing.T) {
	text := "Alice and Bob migrated CI to GitHub Actions"
	first := ExtractEntities(text)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(ExtractEntities(text), first) {
			t.Fatal("extraction is not deterministic")
		}
	}
}
