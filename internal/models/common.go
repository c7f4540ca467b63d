package models

// APIResponse is the uniform response envelope: error is 0 on success and -1
// on failure, data carries the payload or null.
type APIResponse struct {
	Error   int         `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PagedBills is the payload of a bill listing.
type PagedBills struct {
	Bills      []Bill `json:"bills"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	TotalPages int    `json:"totalPages"`
}
