// Package api contains API contract definitions for ledgerlens.
// Version v1 represents the current stable API version.
package api

import "encoding/json"

// Row is one spreadsheet record as a JSON object. Member order is the
// column order and is kept end to end.
type Row = json.RawMessage

// Chart API Requests

// ChartRequest asks for a PNG chart. Labels and values are derived from Data
// when omitted. ChartType is handed to the renderer as is.
type ChartRequest struct {
	Data      []Row     `json:"data" validate:"max=100000"`
	ChartType string    `json:"chartType,omitempty"`
	Labels    []string  `json:"labels,omitempty" validate:"omitempty,max=100000"`
	Values    []float64 `json:"values,omitempty" validate:"omitempty,max=100000"`
	Title     string    `json:"title,omitempty" validate:"max=200"`
}

// Receipt API Requests

// CompanyInfo is the company block printed on a receipt. Blank fields use
// the configured defaults.
type CompanyInfo struct {
	Name    string `json:"name" validate:"max=120"`
	Address string `json:"address" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=50"`
}

// ReceiptRequest asks for a PDF receipt over previously uploaded data.
type ReceiptRequest struct {
	Data         []Row        `json:"data" validate:"max=100000"`
	Calculations Calculations `json:"calculations"`
	CompanyInfo  CompanyInfo  `json:"companyInfo"`
}

// Export API Requests

// ExportRequest asks for the records as a CSV document.
type ExportRequest struct {
	Data    []Row    `json:"data" validate:"max=100000"`
	Columns []string `json:"columns,omitempty" validate:"omitempty,max=1000,dive,required"`
}
