package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// handleHealthCheck reports the translation engine and live counts. A
// missing engine degrades the server: documents can still be loaded,
// edited and exported, but nothing can be translated.
func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"workspaces": {
			Status:  "healthy",
			Message: fmt.Sprintf("%d open", s.services.Workspaces.Count()),
		},
		"events": {
			Status:  "healthy",
			Message: fmt.Sprintf("%d subscribers", s.sseManager.ClientCount()),
		},
	}

	status := "healthy"
	tr := s.services.Translation
	if tr != nil && tr.Configured() {
		components["translation"] = ComponentHealth{
			Status:  "healthy",
			Message: fmt.Sprintf("%s, target %s", tr.Engine(), tr.TargetLanguage()),
		}
	} else {
		status = "degraded"
		components["translation"] = ComponentHealth{
			Status:  "unhealthy",
			Message: "no API key configured",
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     status,
			Components: components,
		},
	}, nil
}
