package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"reportai-backend/internal/bootstrap"
	"reportai-backend/internal/shared/config"
	"reportai-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		initErr = err
		return
	}
	if app.LocalQueue != nil {
		telemetry.Warn("lambda.async_generate_disabled", map[string]any{"reason": "SQS_QUEUE_URL empty"})
		app.ReportsService.Queue = nil
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr.Error()})
		return errorResponse(`{"error":{"code":"internal_error","message":"bootstrap failed"}}`), initErr
	}
	if ginLambda == nil {
		return errorResponse(`{"error":{"code":"internal_error","message":"router not initialized"}}`), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func errorResponse(body string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
