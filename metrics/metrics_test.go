package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/movies", "200"))
	RecordAPIRequest(http.MethodGet, "/movies", http.StatusOK, 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/movies", "200"))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestObserveDB(t *testing.T) {
	errs := DBOperationErrors.WithLabelValues("find", "test_collection")
	before := testutil.ToFloat64(errs)

	assert.NoError(t, ObserveDB("find", "test_collection", time.Now(), nil))
	assert.InDelta(t, 0, testutil.ToFloat64(errs)-before, 0.0001)

	boom := errors.New("boom")
	assert.ErrorIs(t, ObserveDB("find", "test_collection", time.Now(), boom), boom)
	assert.InDelta(t, 1, testutil.ToFloat64(errs)-before, 0.0001)
}
