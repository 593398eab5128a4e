package hello

// GetOutput is the response for GET /hello/{who}. The body is a bare JSON string.
type GetOutput struct {
	Body string `doc:"Greeting echoing the path segment" example:"Hello world?"`
}
