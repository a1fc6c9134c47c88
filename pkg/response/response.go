package response

import "github.com/holuwadafe/maglo-finance/internal/model"

// Response represents a standard API response format
type Response struct {
	Status     string             `json:"status"`      // "success" or "error"
	StatusCode int                `json:"status_code"` // HTTP status code
	Data       interface{}        `json:"data,omitempty"`
	Error      string             `json:"error,omitempty"`
	Errors     []model.FieldError `json:"errors,omitempty"` // per-field failures of a 400
}

// Page wraps one page of a listing with its position in the full result set
type Page struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Invalid returns an error response listing every rejected field
func Invalid(statusCode int, fields []model.FieldError) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      "validation failed",
		Errors:     fields,
	}
}
