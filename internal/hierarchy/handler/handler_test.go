package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"partnersearch/internal/company/models"
	"partnersearch/internal/hierarchy"
	"partnersearch/internal/hierarchy/cache"
	"partnersearch/internal/hierarchy/export"
	"partnersearch/internal/hierarchy/service"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/testutil"
)

type stubService struct {
	env       *models.Envelope
	view      *hierarchy.TreeView
	result    *service.ExportResult
	link      *service.ExportLink
	artifact  *cache.Artifact
	err       error
	gotMode   hierarchy.ViewMode
	gotTerm   string
	gotExport service.ExportRequest
}

func (s *stubService) Get(_ context.Context, _ string) (*models.Envelope, error) {
	return s.env, s.err
}

func (s *stubService) Tree(_ context.Context, _ string, mode hierarchy.ViewMode, term string) (*hierarchy.TreeView, error) {
	s.gotMode, s.gotTerm = mode, term
	return s.view, s.err
}

func (s *stubService) Export(_ context.Context, req service.ExportRequest) (*service.ExportResult, error) {
	s.gotExport = req
	return s.result, s.err
}

func (s *stubService) CreateExportLink(_ context.Context, req service.ExportRequest) (*service.ExportLink, error) {
	s.gotExport = req
	return s.link, s.err
}

func (s *stubService) Download(_ context.Context, _ string) (*cache.Artifact, error) {
	return s.artifact, s.err
}

type HierarchyHandlerSuite struct {
	suite.Suite
	svc    *stubService
	router chi.Router
}

func TestHierarchyHandlerSuite(t *testing.T) {
	suite.Run(t, new(HierarchyHandlerSuite))
}

func (s *HierarchyHandlerSuite) SetupTest() {
	s.svc = &stubService{}
	s.router = chi.NewRouter()
	s.router.Route("/api", New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register)
}

func (s *HierarchyHandlerSuite) TestGet() {
	s.Run("returns the envelope", func() {
		s.svc.env = &models.Envelope{
			DUNS:       "804735132",
			Hierarchy:  &models.Hierarchy{Subsidiaries: []models.Node{{DUNS: "804735133", PrimaryName: "Apple Retail"}}},
			DataSource: "Mock Data",
		}
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132"))
		s.Equal(http.StatusOK, rr.Code)

		var got models.Envelope
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &got))
		s.Equal("804735132", got.DUNS)
		s.Len(got.Hierarchy.Subsidiaries, 1)
	})

	s.Run("missing hierarchy maps to 404", func() {
		s.svc.err = dErrors.New(dErrors.CodeMissingHierarchy, "no corporate hierarchy available for duns 804735132")
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "missing_hierarchy")
	})

	s.Run("upstream outage maps to 503", func() {
		s.svc.err = dErrors.New(dErrors.CodeUnavailable, "D&B API is unavailable")
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "unavailable")
	})
}

func (s *HierarchyHandlerSuite) TestTree() {
	s.Run("passes mode and query", func() {
		s.svc.view = &hierarchy.TreeView{DUNS: "804735132", Mode: hierarchy.ViewDownward, Empty: true, Members: []hierarchy.TreeMember{}}
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/tree?mode=downward&q=retail"))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(hierarchy.ViewDownward, s.svc.gotMode)
		s.Equal("retail", s.svc.gotTerm)
	})

	s.Run("rejects unknown mode", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/tree?mode=sideways"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HierarchyHandlerSuite) TestExport() {
	s.Run("streams the workbook", func() {
		s.svc.result = &service.ExportResult{
			FileName:    "Corporate_Hierarchy_Apple_Inc__804735132_2025-03-14.xlsx",
			ContentType: export.ContentType,
			Data:        []byte("PK\x03\x04"),
			Entities:    3,
		}
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/export?lang=en"))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(export.ContentType, rr.Header().Get("Content-Type"))
		s.Equal(`attachment; filename=Corporate_Hierarchy_Apple_Inc__804735132_2025-03-14.xlsx`, rr.Header().Get("Content-Disposition"))
		s.Equal("PK\x03\x04", rr.Body.String())
		s.Equal(service.ExportRequest{DUNS: "804735132", Language: "en"}, s.svc.gotExport)
	})

	s.Run("link delivery returns a download url", func() {
		s.svc.link = &service.ExportLink{
			ID:        "0b7f3c1e-5d2a-4e8b-9c1d-2a3b4c5d6e7f",
			FileName:  "x.xlsx",
			Entities:  3,
			ExpiresAt: time.Date(2025, 3, 14, 9, 35, 0, 0, time.UTC),
		}
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/export?delivery=link"))
		s.Equal(http.StatusCreated, rr.Code)

		var body map[string]any
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
		s.Equal("/api/exports/0b7f3c1e-5d2a-4e8b-9c1d-2a3b4c5d6e7f", body["download_url"])
		s.Equal("0b7f3c1e-5d2a-4e8b-9c1d-2a3b4c5d6e7f", body["id"])
	})

	s.Run("encoding failure keeps its description", func() {
		s.svc.err = dErrors.New(dErrors.CodeExportEncoding, "failed to encode spreadsheet")
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/export"))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("export_encoding_failure", body["error"])
		s.Equal("failed to encode spreadsheet", body["error_description"])
	})

	s.Run("no company selected", func() {
		s.svc.err = dErrors.New(dErrors.CodeInvalidInput, "no company selected for export")
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/export"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HierarchyHandlerSuite) TestExportMiddlewareWrapsOnlyExport() {
	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := chi.NewRouter()
	router.Route("/api", New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil)), WithExportMiddleware(blocked)).Register)
	s.svc.env = &models.Envelope{DUNS: "804735132", Hierarchy: &models.Hierarchy{}}

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132/export"))
	s.Equal(http.StatusTooManyRequests, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/api/company-hierarchy/804735132"))
	s.Equal(http.StatusOK, rr.Code)
}

func (s *HierarchyHandlerSuite) TestDownload() {
	s.Run("serves the artifact", func() {
		s.svc.artifact = &cache.Artifact{FileName: "a.xlsx", ContentType: export.ContentType, Data: []byte("data")}
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/exports/0b7f3c1e-5d2a-4e8b-9c1d-2a3b4c5d6e7f"))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("4", rr.Header().Get("Content-Length"))
	})

	s.Run("expired link", func() {
		s.svc.err = dErrors.New(dErrors.CodeNotFound, "export link expired or already used")
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/exports/0b7f3c1e-5d2a-4e8b-9c1d-2a3b4c5d6e7f"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
