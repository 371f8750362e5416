package service

import (
	"testing"

	"issp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadRows(t *testing.T) {
	// Short input pads with empty row objects.
	padded := PadRows([]interface{}{map[string]interface{}{"name": "MIS"}}, 3)
	require.Len(t, padded, 3)
	assert.Equal(t, map[string]interface{}{"name": "MIS"}, padded[0])
	assert.Equal(t, map[string]interface{}{}, padded[1])
	assert.Equal(t, map[string]interface{}{}, padded[2])

	// Long input truncates.
	long := make([]interface{}, 20)
	for i := range long {
		long[i] = map[string]interface{}{"n": i}
	}
	assert.Len(t, PadRows(long, 15), 15)

	// Nil rows become empty objects, not nils.
	padded = PadRows([]interface{}{nil}, 1)
	assert.Equal(t, map[string]interface{}{}, padded[0])
}

func TestStripBlankRows(t *testing.T) {
	rows := []interface{}{
		map[string]interface{}{"name": "MIS", "head": "Cruz"},
		map[string]interface{}{"name": "", "head": "   "}, // all blank text
		map[string]interface{}{},
		map[string]interface{}{"name": nil},
		map[string]interface{}{"count": float64(0)}, // non-string value keeps the row
		nil,
	}

	stripped := StripBlankRows(rows)
	require.Len(t, stripped, 2)
	assert.Equal(t, map[string]interface{}{"name": "MIS", "head": "Cruz"}, stripped[0])
	assert.Equal(t, map[string]interface{}{"count": float64(0)}, stripped[1])
}

func TestNormalizeForLoadFixedLengths(t *testing.T) {
	tests := []struct {
		page string
		key  string
		rows int
	}{
		{model.PageOrgProfile, "organizational_units", model.OrgUnitRows},
		{model.PageISStrategy, "strategic_concerns", model.StrategicConcernRows},
		{model.PageResourceReqs, "resource_deployment", model.ResourceDeploymentRows},
		{model.PageInvestmentProgram, "cost_breakdown", model.CostBreakdownRows},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			fields := NormalizeForLoad(tt.page, map[string]interface{}{})
			rows, ok := fields[tt.key].([]interface{})
			require.True(t, ok, "page %s must expose %s", tt.page, tt.key)
			assert.Len(t, rows, tt.rows)
		})
	}

	// Page D has no fixed-length table; fields pass through untouched.
	fields := NormalizeForLoad(model.PageICTProjects, map[string]interface{}{"title": "x"})
	assert.Equal(t, map[string]interface{}{"title": "x"}, fields)
}

func TestNormalizeForSaveStripsBlankTableRows(t *testing.T) {
	fields := map[string]interface{}{
		"strategic_concerns": []interface{}{
			map[string]interface{}{"concern": "connectivity"},
			map[string]interface{}{"concern": ""},
			map[string]interface{}{},
		},
		"other": "kept",
	}

	cleaned := NormalizeForSave(model.PageISStrategy, fields)
	rows := cleaned["strategic_concerns"].([]interface{})
	assert.Len(t, rows, 1)
	assert.Equal(t, "kept", cleaned["other"])
}

func TestNextPage(t *testing.T) {
	next, err := NextPage(model.PageOrgProfile, true)
	require.NoError(t, err)
	assert.Equal(t, model.PageISStrategy, next)

	prev, err := NextPage(model.PageISStrategy, false)
	require.NoError(t, err)
	assert.Equal(t, model.PageOrgProfile, prev)

	_, err = NextPage(model.PageInvestmentProgram, true)
	assert.Error(t, err)

	_, err = NextPage(model.PageOrgProfile, false)
	assert.Error(t, err)

	_, err = NextPage("Z", true)
	assert.Error(t, err)
}
