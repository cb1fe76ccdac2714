package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/dataprocessing"
	apierrors "ledgerlens/internal/errors"
	"ledgerlens/internal/middleware"
	"ledgerlens/internal/services"
)

// MockChartService is a mock implementation of ChartRenderer
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) Render(ctx context.Context, in services.ChartInput) ([]byte, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockReceiptService is a mock implementation of ReceiptGenerator
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Generate(ctx context.Context, in services.ReceiptInput) ([]byte, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReceiptService) ExportCSV(ctx context.Context, records []dataprocessing.Record, columns []string) ([]byte, error) {
	args := m.Called(records, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newExportRouter(charts *MockChartService, receipts *MockReceiptService) chi.Router {
	h := NewExportHandler(charts, receipts, middleware.NewValidator(), testLogger(), testErrorHandler())
	r := chi.NewRouter()
	r.Post("/api/chart", h.Chart)
	r.Post("/api/receipt", h.Receipt)
	r.Post("/api/export/csv", h.CSV)
	return r
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestExportHandler_Chart(t *testing.T) {
	pngBytes := []byte("\x89PNG\r\n\x1a\nfake")

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockChartService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success",
			body: `{"data":[{"name":"Widget","amount":"10"}],"chartType":"pie","title":"Sales"}`,
			setupMock: func(m *MockChartService) {
				m.On("Render", mock.MatchedBy(func(in services.ChartInput) bool {
					return in.Type == "pie" && in.Title == "Sales" && len(in.Data) == 1 &&
						in.Data[0].String("name") == "Widget"
				})).Return(pngBytes, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed json",
			body:           `{"data":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "row is not an object",
			body:           `{"data":[[1,2]]}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "title too long",
			body:           `{"title":"` + strings.Repeat("t", 201) + `"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "empty series",
			body: `{"data":[]}`,
			setupMock: func(m *MockChartService) {
				m.On("Render", mock.Anything).Return(nil, services.ErrEmptySeries)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "No chart data provided",
		},
		{
			name: "renderer failure",
			body: `{"data":[{"amount":1}],"chartType":"radar"}`,
			setupMock: func(m *MockChartService) {
				m.On("Render", mock.Anything).
					Return(nil, apierrors.NewRenderingError("failed to render chart", errors.New("unsupported chart type")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to generate chart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charts := new(MockChartService)
			if tt.setupMock != nil {
				tt.setupMock(charts)
			}
			rec := postJSON(newExportRouter(charts, new(MockReceiptService)), "/api/chart", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.Equal(t, `attachment; filename="chart.png"`, rec.Header().Get("Content-Disposition"))
				assert.Equal(t, pngBytes, rec.Body.Bytes())
			} else {
				body := decodeBody(t, rec)
				assert.Equal(t, false, body["success"])
				if tt.expectedError != "" {
					assert.Equal(t, tt.expectedError, body["error"])
				}
			}
			charts.AssertExpectations(t)
		})
	}
}

func TestExportHandler_Receipt(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		receipts := new(MockReceiptService)
		receipts.On("Generate", mock.MatchedBy(func(in services.ReceiptInput) bool {
			stats, ok := in.Calculations[dataprocessing.FieldAmount]
			return in.Company.Name == "Acme" && len(in.Data) == 2 && ok && stats.Sum == 30
		})).Return([]byte("%PDF-1.4"), nil)

		body := `{"data":[{"amount":10},{"amount":20}],` +
			`"calculations":{"amount":{"sum":30,"average":15,"min":10,"max":20,"count":2}},` +
			`"companyInfo":{"name":"Acme"}}`
		rec := postJSON(newExportRouter(new(MockChartService), receipts), "/api/receipt", body)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="accounting-receipt.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4", rec.Body.String())
		receipts.AssertExpectations(t)
	})

	t.Run("render failure", func(t *testing.T) {
		receipts := new(MockReceiptService)
		receipts.On("Generate", mock.Anything).
			Return(nil, apierrors.NewRenderingError("failed to render receipt", errors.New("font")))

		rec := postJSON(newExportRouter(new(MockChartService), receipts), "/api/receipt", `{"data":[]}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate receipt", decodeBody(t, rec)["error"])
	})

	t.Run("company name too long", func(t *testing.T) {
		receipts := new(MockReceiptService)
		body := `{"companyInfo":{"name":"` + strings.Repeat("n", 121) + `"}}`
		rec := postJSON(newExportRouter(new(MockChartService), receipts), "/api/receipt", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		receipts.AssertNotCalled(t, "Generate", mock.Anything)
	})
}

func TestExportHandler_CSV(t *testing.T) {
	receipts := new(MockReceiptService)
	receipts.On("ExportCSV", mock.Anything, []string{"name"}).Return([]byte("\xEF\xBB\xBFname\nWidget\n"), nil)

	rec := postJSON(newExportRouter(new(MockChartService), receipts), "/api/export/csv",
		`{"data":[{"name":"Widget"}],"columns":["name"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="records.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\xEF\xBB\xBFname\nWidget\n", rec.Body.String())
	receipts.AssertExpectations(t)
}
