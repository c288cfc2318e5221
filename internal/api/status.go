package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/scalerwatch/internal/api/models"
)

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Latest Report",
		Description: "Get the most recent frame report",
		Tags:        []string{"monitor"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		r, ok := s.options.Source.Latest()
		if !ok {
			return nil, huma.Error503ServiceUnavailable("No frame sampled yet")
		}
		return &models.StatusResponse{Body: r}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-header",
		Method:      http.MethodGet,
		Path:        "/api/header",
		Summary:     "Scaler Header",
		Description: "Get the scaler geometry and buffer layout being sampled",
		Tags:        []string{"monitor"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.HeaderResponse, error) {
		h, layout := s.options.Source.Header()
		data := models.HeaderData{
			Header:        h,
			Format:        h.Format.String(),
			BytesPerPixel: h.Format.BytesPerPixel(),
			Layout:        layout.String(),
			Triple:        h.TripleBuffered(),
			FrameCounter:  h.FrameCounter(),
		}
		if s.options.Counters != nil {
			for _, c := range s.options.Counters(layout) {
				data.Counters = append(data.Counters, int(c))
			}
		}
		return &models.HeaderResponse{Body: data}, nil
	})
}
