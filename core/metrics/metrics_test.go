package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	ObserveCatalogRequest(" GET ", "ok", 12*time.Millisecond)
	IncDialogCompletion("create", "committed")
	AddMessagesSent(2)
	AddMessagesSent(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(catalogRequestsTotal.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dialogCompletionsTotal.WithLabelValues("create", "committed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(telegramMessagesSentTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["catalog_requests_total"])
	assert.True(t, names["dialog_completions_total"])
}
