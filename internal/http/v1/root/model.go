package root

// Message is the fixed informational text served at the API root.
const Message = "The orangutans are three extant species of great apes native to Indonesia and Malaysia."

// Data models the root response payload.
type Data struct {
	Message string `json:"message" doc:"Informational message" example:"The orangutans are three extant species of great apes native to Indonesia and Malaysia."`
}

// GetOutput is the response for GET /.
type GetOutput struct {
	Body Data
}
