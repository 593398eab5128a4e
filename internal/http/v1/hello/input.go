package hello

// GetInput captures the path segment to greet. No validation is applied:
// whitespace, unicode and punctuation are echoed as decoded.
type GetInput struct {
	Who string `path:"who" doc:"Name to greet" example:"world"`
}
