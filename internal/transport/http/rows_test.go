package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dp "ledgerlens/internal/dataprocessing"
	apierrors "ledgerlens/internal/errors"
	api "ledgerlens/pkg/contracts/api/v1"
)

func TestRecordsFromRows(t *testing.T) {
	records, err := recordsFromRows([]api.Row{
		api.Row(`{"total":"1,200","name":"Widget","note":null}`),
		api.Row(`{"amount":5}`),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"total", "name"}, records[0].Keys())
	total, ok := records[0].Total()
	require.True(t, ok)
	assert.Equal(t, 1200.0, total)
	amount, ok := records[1].Amount()
	require.True(t, ok)
	assert.Equal(t, 5.0, amount)

	t.Run("nil rows", func(t *testing.T) {
		records, err := recordsFromRows(nil)
		require.NoError(t, err)
		assert.Nil(t, records)
	})

	t.Run("non-object row", func(t *testing.T) {
		_, err := recordsFromRows([]api.Row{api.Row(`{"a":1}`), api.Row(`"text"`)})
		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "INVALID_REQUEST", apiErr.ErrorCode)
		assert.Contains(t, apiErr.Details, "data[1]")
	})
}

func TestRowsFromRecords(t *testing.T) {
	rows, err := rowsFromRecords([]dp.Record{
		dp.NewRecord(dp.Cell{Column: "zeta", Value: dp.Text("z")}, dp.Cell{Column: "alpha", Value: dp.Number(1)}),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `{"zeta":"z","alpha":1}`, string(rows[0]))

	empty, err := rowsFromRecords(nil)
	require.NoError(t, err)
	body, err := json.Marshal(api.NewUploadResponse(empty, nil))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":[]`)
}

func TestStatisticsConversion(t *testing.T) {
	assert.Nil(t, statisticsFromCalculations(nil))

	m := statisticsFromCalculations(api.Calculations{"amount": {Sum: 30, Average: 15, Min: 10, Max: 20, Count: 2}})
	assert.Equal(t, dp.FieldStatistics{Sum: 30, Average: 15, Min: 10, Max: 20, Count: 2}, m[dp.FieldAmount])

	calc := calculationsFromStatistics(m)
	assert.Equal(t, 2, calc["amount"].Count)
	assert.Empty(t, calculationsFromStatistics(nil))
}
