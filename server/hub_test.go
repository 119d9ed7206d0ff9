package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exfield/model"
	"exfield/pipeline"
)

func testConfig() pipeline.Config {
	return pipeline.Config{PX: 1, PY: 1, PZ: 1, NX: 4, NY: 4, NZ: 4, NT: 2}
}

func TestRunPipelineReply(t *testing.T) {
	h := NewHub(testConfig())

	reply := h.runPipeline(model.Msg{Type: "started"})
	require.Equal(t, "started", reply.Type)

	var res model.Result
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &res))
	assert.Len(t, res.Steps, 2)
}

func TestRunPipelineBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PX = 0
	h := NewHub(cfg)

	reply := h.runPipeline(model.Msg{Type: "started"})
	assert.Equal(t, "error", reply.Type)
}

func TestDescribeEnv(t *testing.T) {
	h := NewHub(testConfig())
	var cfg pipeline.Config
	require.NoError(t, json.Unmarshal([]byte(h.describeEnv()), &cfg))
	assert.Equal(t, h.cfg, cfg)
}
