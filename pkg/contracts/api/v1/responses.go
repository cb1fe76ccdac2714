package api

// UploadSuccessMessage is returned with every successful upload.
const UploadSuccessMessage = "File processed successfully"

// FieldStatistics summarises the numeric values of one column.
type FieldStatistics struct {
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// Calculations maps a column name (amount, price, quantity or total) to its
// statistics. Columns without a single valid number are absent.
type Calculations map[string]FieldStatistics

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Success      bool         `json:"success"`
	Data         []Row        `json:"data"`
	Calculations Calculations `json:"calculations"`
	Message      string       `json:"message"`
}

// NewUploadResponse wraps the parsed rows and their statistics.
func NewUploadResponse(rows []Row, calc Calculations) UploadResponse {
	if rows == nil {
		rows = []Row{}
	}
	if calc == nil {
		calc = Calculations{}
	}
	return UploadResponse{
		Success:      true,
		Data:         rows,
		Calculations: calc,
		Message:      UploadSuccessMessage,
	}
}
