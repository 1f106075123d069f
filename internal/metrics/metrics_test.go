package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPayment(t *testing.T) {
	before := testutil.ToFloat64(PaymentsTotal.WithLabelValues("confirmed", "trial"))
	RecordPayment("confirmed", "trial")
	after := testutil.ToFloat64(PaymentsTotal.WithLabelValues("confirmed", "trial"))
	assert.Equal(t, before+1, after)
}

func TestRecordWalletWithdrawal(t *testing.T) {
	before := testutil.ToFloat64(WalletWithdrawalsTotal.WithLabelValues("requested"))
	RecordWalletWithdrawal("requested")
	after := testutil.ToFloat64(WalletWithdrawalsTotal.WithLabelValues("requested"))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordHTTPRequest("GET", "/health", "200", 0.01)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	assert.Equal(t, before+1, after)
}
