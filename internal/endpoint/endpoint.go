// Package endpoint resolves the URL and header set for a request. It is
// deterministic string composition: access-mode capability checks happen
// upstream in the orchestrator, and credentials are acquired before the
// resolver runs.
package endpoint

import (
	"fmt"
	"strings"

	"github.com/vexhq/vex/provider"
)

const (
	vertexBaseURL          = "https://aiplatform.googleapis.com"
	anthropicDirectURL     = "https://api.anthropic.com/v1/messages"
	googleDirectBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	anthropicDirectVersion = "2023-06-01"

	// Beta markers attached when the matching feature toggle is on and the
	// model advertises support. Multiple markers comma-join into one
	// anthropic-beta header.
	betaExtendedContext  = "context-1m-2025-08-07"
	betaMemoryManagement = "context-management-2025-06-27"
)

// Resolve composes the request URL and header set for the spec. The bearer
// token is only consulted in managed mode; direct and custom modes carry
// the spec's API key.
func Resolve(spec provider.RequestSpec, bearerToken string) (string, map[string]string, error) {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}

	switch spec.Mode {
	case provider.AccessManaged:
		path, method := spec.Config.ModelPath()
		url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/%s/models/%s:%s",
			vertexBaseURL, spec.ProjectID, spec.Location, spec.Config.Publisher, path, method)
		headers["Authorization"] = "Bearer " + bearerToken
		addBetaHeaders(spec, headers)
		return url, headers, nil

	case provider.AccessDirect:
		switch spec.Config.Publisher {
		case provider.PublisherAnthropic:
			headers["x-api-key"] = spec.APIKey
			headers["anthropic-version"] = anthropicDirectVersion
			addBetaHeaders(spec, headers)
			return anthropicDirectURL, headers, nil
		case provider.PublisherGoogle:
			headers["x-goog-api-key"] = spec.APIKey
			url := fmt.Sprintf("%s/%s:streamGenerateContent", googleDirectBaseURL, spec.Config.DirectModelID)
			return url, headers, nil
		default:
			return "", nil, fmt.Errorf("publisher %s has no direct endpoint", spec.Config.Publisher)
		}

	case provider.AccessCustom:
		if spec.APIKey != "" {
			headers["Authorization"] = "Bearer " + spec.APIKey
		}
		return spec.Endpoint, headers, nil

	default:
		return "", nil, fmt.Errorf("unknown access mode %q", spec.Mode)
	}
}

func addBetaHeaders(spec provider.RequestSpec, headers map[string]string) {
	if spec.Config.Publisher != provider.PublisherAnthropic {
		return
	}
	var markers []string
	if spec.ExtendedContext && spec.Config.SupportsExtendedContext {
		markers = append(markers, betaExtendedContext)
	}
	if spec.MemoryTool && spec.Config.SupportsMemoryTool {
		markers = append(markers, betaMemoryManagement)
	}
	if len(markers) > 0 {
		headers["anthropic-beta"] = strings.Join(markers, ",")
	}
}
