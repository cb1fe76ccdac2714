package http

import (
	"encoding/json"
	"fmt"

	dp "ledgerlens/internal/dataprocessing"
	apierrors "ledgerlens/internal/errors"
	api "ledgerlens/pkg/contracts/api/v1"
)

// recordsFromRows decodes wire rows into records, keeping member order. A
// row that is not a JSON object makes the request invalid.
func recordsFromRows(rows []api.Row) ([]dp.Record, error) {
	if rows == nil {
		return nil, nil
	}
	records := make([]dp.Record, len(rows))
	for i, row := range rows {
		if err := json.Unmarshal(row, &records[i]); err != nil {
			return nil, apierrors.InvalidRequestWithError(fmt.Errorf("data[%d]: %w", i, err))
		}
	}
	return records, nil
}

func rowsFromRecords(records []dp.Record) ([]api.Row, error) {
	rows := make([]api.Row, len(records))
	for i, rec := range records {
		b, err := rec.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		rows[i] = b
	}
	return rows, nil
}

func statisticsFromCalculations(calc api.Calculations) dp.StatisticsMap {
	if calc == nil {
		return nil
	}
	m := make(dp.StatisticsMap, len(calc))
	for field, s := range calc {
		m[dp.FieldName(field)] = dp.FieldStatistics(s)
	}
	return m
}

func calculationsFromStatistics(m dp.StatisticsMap) api.Calculations {
	calc := make(api.Calculations, len(m))
	for field, s := range m {
		calc[string(field)] = api.FieldStatistics(s)
	}
	return calc
}
