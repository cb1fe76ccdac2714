// Package exporter turns normalized records into downloadable documents.
//
// ReceiptWriter lays out an A4 PDF receipt with a company header, a table of
// line items and the per-field statistics. Amounts are formatted with
// shopspring/decimal so rounding matches what an accountant expects.
//
// CSVWriter writes the records back out as CSV, one column per key in
// first-seen order, with an optional UTF-8 BOM for Excel.
//
// Example usage:
//
//	w := exporter.NewReceiptWriter(cfg.Receipt, logger)
//	pdf, err := w.Write(ctx, exporter.Receipt{
//	    Company:      exporter.CompanyInfo{Name: "Acme Ltd"},
//	    Records:      records,
//	    Calculations: dataprocessing.Aggregate(records),
//	})
package exporter
