package handlers

import (
	"context"
	"testing"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/gartstein/bawsala/internal/directory/controller"
	"github.com/gartstein/bawsala/internal/directory/events"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

const testCatalog = `[
  {
    "id": "tamara",
    "name_ar": "تمارا",
    "name_en": "Tamara",
    "description_ar": "منصة للدفع الآجل",
    "description_en": "Buy now pay later platform",
    "website": "https://tamara.co",
    "type": "private",
    "industry": ["Fintech", "التقنية المالية"],
    "subindustry": ["Buy Now Pay Later (BNPL)", "اشتر الآن وادفع لاحقاً"],
    "tags": ["fintech", "ksa", "bnpl"],
    "founding_year": 2020,
    "headquarters": "Saudi Arabia"
  },
  {
    "id": "talabat",
    "name_ar": "طلبات",
    "name_en": "Talabat",
    "description_ar": "توصيل الطعام",
    "website": "https://talabat.com",
    "type": "private",
    "industry": ["Foodtech", "تقنية الأغذية"],
    "subindustry": ["Food Delivery", "توصيل الطعام"],
    "tags": ["food", "delivery"],
    "founding_year": 2004,
    "headquarters": "Kuwait"
  },
  {
    "id": "hyperpay",
    "name_ar": "هايبر باي",
    "name_en": "HyperPay",
    "description_ar": "بوابة دفع",
    "website": "https://hyperpay.com",
    "type": "private",
    "industry": ["Fintech", "التقنية المالية"],
    "subindustry": ["Payments", "المدفوعات"],
    "tags": ["fintech", "ksa", "payments"],
    "headquarters": "Saudi Arabia"
  },
  {"id": "broken"}
]`

func newTestService(t *testing.T) *controller.DirectoryService {
	t.Helper()
	records, err := catalog.ParseRecords([]byte(testCatalog))
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	svc := controller.NewDirectoryService(catalog.StaticSource(records), events.NewLogProducer(logger), logger)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}
