package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/orangutan-api/internal/platform/logging"
)

// Register wires hello routes into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        "/hello/{who}",
		Summary:     "Greet someone by name",
		Tags:        []string{"hello"},
	}, getHandler)
}

// Greeting renders the greeting for who.
func Greeting(who string) string {
	return "Hello " + who + "?"
}

func getHandler(ctx context.Context, input *GetInput) (*GetOutput, error) {
	applog.LogInfo(ctx, "hello get", zap.String("who", input.Who))
	return &GetOutput{Body: Greeting(input.Who)}, nil
}
