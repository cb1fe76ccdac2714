// Package dataprocessing turns uploaded spreadsheets into ordered records and
// summarises their numeric columns.
//
// # Components
//
//  1. Normalizer: reads the first worksheet of a workbook and returns one
//     Record per row below the header
//  2. Aggregator: computes sum, average, min, max and count for the amount,
//     price, quantity and total columns
//
// # Usage
//
//	n := dataprocessing.NewNormalizer(logger)
//	records, err := n.Normalize(ctx, data)
//	if err != nil {
//	    return err // *errors.AppError of type PARSING
//	}
//	calculations := dataprocessing.Aggregate(records)
//
// # Cell values
//
// Records keep cell values as read: numeric cells are numbers, everything
// else is text, and empty cells are left out. Coercion happens only when a
// value is read as a number, either by the aggregator or through the typed
// accessors (Record.Amount and friends). Text is trimmed and may use ',' as a
// thousands separator; anything that does not parse to a finite number is
// skipped rather than treated as zero.
package dataprocessing
