package response

import "backend/pkg/apperror"

// Response is the standard API envelope.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Code       string      `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Paginated wraps a list payload with its pagination metadata.
type Paginated struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}

// Success returns a standard success response wrapping the data.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError builds an error response from a classified application error,
// carrying both the HTTP status and the taxonomy code.
func FromError(err error) (int, Response) {
	status := apperror.StatusOf(err)
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Code:       apperror.CodeOf(err),
		Error:      err.Error(),
	}
}

// List returns a paginated success response.
func List(statusCode int, data interface{}, total int64, page, limit int) Paginated {
	return Paginated{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}
}
