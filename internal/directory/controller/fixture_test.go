package controller

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gartstein/bawsala/internal/directory/events"
	"github.com/stretchr/testify/require"
)

// MockSource implements catalog.Source for testing
type MockSource struct {
	records func(context.Context) ([]json.RawMessage, error)
}

func (m *MockSource) Records(ctx context.Context) ([]json.RawMessage, error) {
	return m.records(ctx)
}

func staticSource(records []json.RawMessage) *MockSource {
	return &MockSource{records: func(context.Context) ([]json.RawMessage, error) {
		return records, nil
	}}
}

// MockProducer records every produced event.
type MockProducer struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *MockProducer) Produce(ev events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *MockProducer) ofType(t events.EventType) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Event
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type rec struct {
	id, nameAr, nameEn string
	industry           [2]string
	subindustry        [2]string
	tags               []string
	year               int
	hq                 string
}

func (r rec) raw(t *testing.T) json.RawMessage {
	t.Helper()
	m := map[string]any{
		"id":             r.id,
		"name_ar":        r.nameAr,
		"name_en":        r.nameEn,
		"description_ar": "وصف " + r.nameAr,
		"description_en": "About " + r.nameEn,
		"website":        "https://" + r.id + ".example.com",
		"type":           "private",
		"industry":       r.industry,
		"subindustry":    r.subindustry,
		"tags":           r.tags,
	}
	if r.year != 0 {
		m["founding_year"] = r.year
	}
	if r.hq != "" {
		m["headquarters"] = r.hq
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}

var (
	fintech   = [2]string{"Fintech", "التقنية المالية"}
	foodtech  = [2]string{"Foodtech", "تقنية الأغذية"}
	media     = [2]string{"Media & Entertainment", "الإعلام والترفيه"}
	bnpl      = [2]string{"Buy Now Pay Later (BNPL)", "اشتر الآن وادفع لاحقاً"}
	payments  = [2]string{"Payments", "المدفوعات"}
	delivery  = [2]string{"Food Delivery", "توصيل الطعام"}
	streaming = [2]string{"Streaming Services", "خدمات البث"}
)

// testRecords is five valid companies followed by one invalid record.
func testRecords(t *testing.T) []json.RawMessage {
	recs := []rec{
		{"tamara", "تمارا", "Tamara", fintech, bnpl, []string{"fintech", "ksa", "bnpl"}, 2020, "Saudi Arabia"},
		{"tabby", "تابي", "Tabby", fintech, bnpl, []string{"fintech", "uae", "bnpl"}, 2019, "United Arab Emirates"},
		{"talabat", "طلبات", "Talabat", foodtech, delivery, []string{"food", "delivery"}, 2004, "Kuwait"},
		{"anghami", "أنغامي", "Anghami", media, streaming, []string{"music", "streaming"}, 2012, "Lebanon"},
		{"hyperpay", "هايبر باي", "HyperPay", fintech, payments, []string{"fintech", "ksa", "payments"}, 0, "Saudi Arabia"},
	}
	out := make([]json.RawMessage, 0, len(recs)+1)
	for _, r := range recs {
		out = append(out, r.raw(t))
	}
	out = append(out, json.RawMessage(`{"id":"broken","name_ar":"x"}`))
	return out
}
