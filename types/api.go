package types

// Response is the envelope wrapped around every API response.
// Successful responses carry Data (omitted for bare acknowledgements),
// failed responses carry Error
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResult is returned once an image has been stored
type UploadResult struct {
	URL string `json:"url"`
}
