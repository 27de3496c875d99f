package dto

import "time"

// APIResponse is the envelope of every API response
type APIResponse struct {
	Data      interface{}  `json:"data,omitempty"`
	Meta      interface{}  `json:"meta,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse wraps data in the standard envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{Data: data, Timestamp: time.Now()}
}

// NewPagedResponse wraps a page of data with its pagination info
func NewPagedResponse(data interface{}, pagination PaginationInfo) APIResponse {
	return APIResponse{Data: data, Meta: PageMeta{Pagination: pagination}, Timestamp: time.Now()}
}

// PageMeta is the meta block of list responses
type PageMeta struct {
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo holds paging details
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}
