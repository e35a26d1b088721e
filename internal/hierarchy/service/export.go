package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"partnersearch/internal/audit"
	"partnersearch/internal/company/models"
	"partnersearch/internal/dnb"
	"partnersearch/internal/hierarchy"
	"partnersearch/internal/hierarchy/cache"
	"partnersearch/internal/hierarchy/export"
	"partnersearch/pkg/domain"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/sentinel"
)

const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)

type ExportRequest struct {
	DUNS     string
	Language string
}

// ExportResult is an encoded workbook ready to be served.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	Entities    int
}

// ExportLink identifies a stored workbook that can be downloaded once.
type ExportLink struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Entities  int       `json:"entity_count"`
	ExpiresAt time.Time `json:"expires_at"`
}

func normalizeLanguage(lang string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", LanguageFrench:
		return LanguageFrench, nil
	case LanguageEnglish:
		return LanguageEnglish, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "lang must be one of: fr, en")
	}
}

// Export loads the company profile and its hierarchy, flattens them and
// encodes the workbook. The export is audited; audit failures are logged only.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	req, result, err := s.measuredExport(ctx, req)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:      audit.ActionHierarchyExported,
		Subject:     req.DUNS,
		EntityCount: result.Entities,
		FileName:    result.FileName,
		Language:    req.Language,
	})
	return result, nil
}

// measuredExport normalizes req, builds the workbook and records one export
// metric sample. It emits no audit event; callers pick the action.
func (s *Service) measuredExport(ctx context.Context, req ExportRequest) (ExportRequest, *ExportResult, error) {
	start := s.now()
	req, err := normalizeRequest(req)
	if err != nil {
		return req, nil, err
	}
	result, err := s.export(ctx, req)
	if err != nil {
		s.metrics.exportDone("error", 0, s.now().Sub(start))
		return req, nil, err
	}
	s.metrics.exportDone("ok", result.Entities, s.now().Sub(start))
	return req, result, nil
}

func normalizeRequest(req ExportRequest) (ExportRequest, error) {
	duns, err := domain.ParseDUNS(req.DUNS)
	if err != nil {
		return req, err
	}
	lang, err := normalizeLanguage(req.Language)
	if err != nil {
		return req, err
	}
	return ExportRequest{DUNS: duns.String(), Language: lang}, nil
}

func (s *Service) export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	ctx, span := tracer.Start(ctx, "hierarchy.Export")
	defer span.End()
	span.SetAttributes(attribute.String("duns", req.DUNS), attribute.String("language", req.Language))

	company, env, err := s.load(ctx, req.DUNS)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows, err := hierarchy.Flatten(company, env.Hierarchy)
	if err != nil {
		return nil, err
	}
	exportedAt := s.now()
	data, err := export.Encode(rows, export.Metadata{
		CompanyName: company.CompanyName,
		DUNS:        company.DUNS,
		ExportedAt:  exportedAt,
		DataSource:  env.DataSource,
		Language:    req.Language,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "export encoding failed", "error", err, "duns", req.DUNS)
		return nil, err
	}
	span.SetAttributes(attribute.Int("entities", len(rows)))

	return &ExportResult{
		FileName:    export.FileName(company.CompanyName, company.DUNS, exportedAt),
		ContentType: export.ContentType,
		Data:        data,
		Entities:    len(rows),
	}, nil
}

// Flatten returns the export rows for duns without encoding a workbook.
func (s *Service) Flatten(ctx context.Context, rawDUNS string) ([]hierarchy.ExportRow, error) {
	duns, err := domain.ParseDUNS(rawDUNS)
	if err != nil {
		return nil, err
	}
	company, env, err := s.load(ctx, duns.String())
	if err != nil {
		return nil, err
	}
	return hierarchy.Flatten(company, env.Hierarchy)
}

// load fetches the profile and the hierarchy concurrently. A missing company
// is reported before a missing hierarchy.
func (s *Service) load(ctx context.Context, duns string) (*models.Company, *models.Envelope, error) {
	var (
		g                  errgroup.Group
		company            *models.Company
		env                *models.Envelope
		companyErr, envErr error
	)
	g.Go(func() error {
		company, companyErr = s.lookupCompany(ctx, duns)
		return nil
	})
	g.Go(func() error {
		env, envErr = s.Get(ctx, duns)
		return nil
	})
	_ = g.Wait()

	if companyErr != nil {
		return nil, nil, companyErr
	}
	if envErr != nil {
		return nil, nil, envErr
	}
	return company, env, nil
}

func (s *Service) lookupCompany(ctx context.Context, duns string) (*models.Company, error) {
	results, err := s.client.Search(ctx, dnb.Criteria{DUNS: duns, ExactMatch: true})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "no company selected for export")
		}
		return nil, s.translate(ctx, err, duns)
	}
	for i := range results {
		if results[i].DUNS == duns {
			return &results[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, "no company selected for export")
}

// CreateExportLink encodes the export and stores it for a single download.
func (s *Service) CreateExportLink(ctx context.Context, req ExportRequest) (*ExportLink, error) {
	req, result, err := s.measuredExport(ctx, req)
	if err != nil {
		return nil, err
	}
	now := s.now()
	artifact := &cache.Artifact{
		ID:          s.newID(),
		FileName:    result.FileName,
		ContentType: result.ContentType,
		Data:        result.Data,
		CreatedAt:   now,
	}
	if err := s.artifacts.Put(ctx, artifact, s.linkTTL); err != nil {
		s.logger.ErrorContext(ctx, "failed to store export artifact", "error", err, "duns", req.DUNS)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "export link storage is unavailable")
	}
	s.emit(ctx, audit.Event{
		Action:      audit.ActionExportLinkRequested,
		Subject:     req.DUNS,
		EntityCount: result.Entities,
		FileName:    result.FileName,
		Language:    req.Language,
	})
	return &ExportLink{
		ID:        artifact.ID,
		FileName:  artifact.FileName,
		Entities:  result.Entities,
		ExpiresAt: now.Add(s.linkTTL),
	}, nil
}

// Download redeems an export link. Links are single use.
func (s *Service) Download(ctx context.Context, id string) (*cache.Artifact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid export id")
	}
	artifact, err := s.artifacts.Take(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "export link expired or already used")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "export link storage is unavailable")
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionExportLinkRedeemed,
		FileName: artifact.FileName,
	})
	return artifact, nil
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(e.Action),
			"subject", e.Subject,
		)
	}
}

func newArtifactID() string {
	return uuid.NewString()
}
