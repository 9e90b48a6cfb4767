package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/newthinker/deepvalue/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *core.Report {
	return &core.Report{
		Symbol: "ACME",
		Sections: []core.Section{
			{Name: "Market Cap", Metrics: []core.Metric{{Label: "Market Cap", Value: 1.5e9, Display: "1.50 BIL"}}},
			{Name: "Financial Condition", Metrics: []core.Metric{{
				Label:   "Current Ratio",
				Value:   2.1,
				Display: "2.10",
				Verdict: &core.Verdict{Rule: "Current ratio > 2", Holds: true},
			}}},
			{Name: "Dividend Record", Notes: []string{"No dividend record."}},
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), ""))

	want := "Market Cap: 1.50 BIL\n" +
		DefaultDivider + "\n" +
		"Current Ratio: 2.10\n" +
		"Current ratio > 2: true\n" +
		DefaultDivider + "\n" +
		"No dividend record.\n" +
		DefaultDivider + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_CustomDivider(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), "--"))
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("--\n")))
}

func TestRender_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, ""))
	assert.Empty(t, buf.String())
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(sampleReport())
	require.NoError(t, err)

	var decoded core.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ACME", decoded.Symbol)
	assert.True(t, decoded.Sections[1].Metrics[0].Verdict.Holds)
	assert.Nil(t, decoded.Sections[0].Metrics[0].Verdict)
}
