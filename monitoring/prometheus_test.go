package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEndpoint(t *testing.T) {
	// recorders must be safe before init
	RecordTx("jetton-wallet", TxCommitted, time.Millisecond)

	InitMetrics()
	InitMetrics()

	RecordTx("jetton-wallet", TxAborted, 2*time.Millisecond)
	RecordRejectedExternal("bad_signature")
	IncreaseBouncedCount()
	AddOutMessages(3)
	SetQueueSize(4)
	SetCollectedFees(12_000_000)
	IncreaseDeployedCount("jetton-minter")
	IncreasePanicCount()

	mux := http.NewServeMux()
	RegisterMetrics(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `jetton_ledger_tx_count{contract="jetton-wallet",status="aborted"} 1`)
	assert.Contains(t, text, `jetton_ledger_rejected_external_count{reason="bad_signature"} 1`)
	assert.Contains(t, text, "jetton_ledger_queue_size 4")
	assert.Contains(t, text, "jetton_ledger_out_message_count 3")
}
