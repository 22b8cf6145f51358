// Package ingest implements the admin upload path spec.md §2 summarizes as
// "C4 -> C5 -> C2 (put encrypted package; DOCX optionally stores original
// too) -> C7 (register) -> C3 (persist)": parse a tagged upload into
// classified sections, encrypt each under a fresh per-document master
// secret, store the encrypted package (and, for DOCX, the original), and
// register the result in the document registry.
package ingest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
	"github.com/techcorp/classified-doc-broker/internal/core/service/registry"
)

// Service drives the upload pipeline, composing C4's per-format parsers, C5
// (section crypto), C2 (blob storage) and C7 (the registry).
type Service struct {
	parsers        map[entity.SourceFormat]port.SectionParser
	crypto         port.SectionCrypto
	storage        port.StorageAdapter
	registry       *registry.Registry
	companySecrets map[string][]byte // companyID -> section-encryption secret (spec.md §6 company catalogue)
}

// New constructs a Service.
func New(parsers map[entity.SourceFormat]port.SectionParser, crypto port.SectionCrypto, storage port.StorageAdapter, reg *registry.Registry, companySecrets map[string][]byte) *Service {
	return &Service{parsers: parsers, crypto: crypto, storage: storage, registry: reg, companySecrets: companySecrets}
}

// UploadParams carries one classified-document upload.
type UploadParams struct {
	Raw              []byte
	Format           entity.SourceFormat
	ReleasableTo     []string
	Department       string
	AuthorID         string
	OriginalFilename string
	RetainOriginal   bool // DOCX only: C6 redaction renders in place and needs the original
}

// UploadResult is what the controller needs to answer
// POST /classified-documents/upload (spec.md §6).
type UploadResult struct {
	Document       *entity.Document
	PerLevelCounts map[entity.ClassificationLevel]int
}

// Upload runs the full C4->C5->C2->C7 pipeline for one upload.
func (s *Service) Upload(ctx context.Context, p UploadParams) (*UploadResult, error) {
	parser, ok := s.parsers[p.Format]
	if !ok {
		return nil, fmt.Errorf("ingest: no parser for format %q: %w", p.Format, entity.ErrInputInvalid)
	}

	parsed, err := parser.Parse(p.Raw, p.Format)
	if err != nil {
		return nil, err
	}
	if len(parsed.Sections) == 0 {
		return nil, entity.ErrNoTaggedContent
	}

	packageID := "pkg:" + uuid.NewString()

	masterSecret := make([]byte, 32)
	if _, err := rand.Read(masterSecret); err != nil {
		return nil, fmt.Errorf("ingest: generate master secret: %w", err)
	}

	pkg, err := s.crypto.Encrypt(parsed, packageID, masterSecret)
	if err != nil {
		return nil, err
	}
	pkg.CreatedAt = time.Now()
	pkg.OriginalFilename = p.OriginalFilename

	data, err := json.Marshal(pkg)
	if err != nil {
		return nil, fmt.Errorf("ingest: marshal encrypted package: %w", err)
	}
	if err := s.storage.Upload(ctx, packageID, data, "application/json"); err != nil {
		return nil, err
	}

	storageRef := entity.DocumentStorageRef{PackageFileID: packageID}
	if p.RetainOriginal && p.Format == entity.SourceFormatDOCX {
		originalID := packageID + ":original"
		if err := s.storage.Upload(ctx, originalID, p.Raw, docxContentType); err != nil {
			return nil, err
		}
		storageRef.OriginalFileID = originalID
	}

	overall, perLevel := summarize(parsed.Sections)

	title := parsed.Title
	if title == "" {
		title = strings.TrimSuffix(p.OriginalFilename, filepath.Ext(p.OriginalFilename))
	}

	companySecrets := make(map[string][]byte, len(p.ReleasableTo))
	for _, company := range p.ReleasableTo {
		if secret, ok := s.companySecrets[company]; ok {
			companySecrets[company] = secret
		}
	}

	doc, err := s.registry.Register(ctx, registry.RegisterParams{
		Title:                 title,
		OverallClassification: overall,
		ReleasableTo:          p.ReleasableTo,
		ContentEncryptionKey:  hex.EncodeToString(masterSecret),
		Storage:               storageRef,
		Metadata: entity.DocumentMetadata{
			AuthorID:         p.AuthorID,
			Department:       p.Department,
			MIMEType:         mimeTypeFor(p.Format),
			OriginalFilename: p.OriginalFilename,
			SectionMetadata: &entity.SectionMetadataSummary{
				OverallClassification: overall,
				PerLevelCounts:        perLevel,
				SourceFormat:          p.Format,
			},
		},
		CompanySecrets: companySecrets,
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{Document: doc, PerLevelCounts: perLevel}, nil
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func summarize(sections []entity.Section) (entity.ClassificationLevel, map[entity.ClassificationLevel]int) {
	counts := make(map[entity.ClassificationLevel]int)
	overall := entity.ClassificationInternal
	for _, section := range sections {
		counts[section.Clearance]++
		if section.Clearance.Rank() > overall.Rank() {
			overall = section.Clearance
		}
	}
	return overall, counts
}

func mimeTypeFor(format entity.SourceFormat) string {
	if format == entity.SourceFormatDOCX {
		return docxContentType
	}
	return "text/html"
}
