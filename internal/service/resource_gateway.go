package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/files"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
)

// ResourceGateway authorizes every file operation against the session gate
// before the catalog is touched.
type ResourceGateway struct {
	gate    *SessionGate
	catalog FileCatalog
}

func NewResourceGateway(gate *SessionGate, catalog FileCatalog) *ResourceGateway {
	return &ResourceGateway{gate: gate, catalog: catalog}
}

func (g *ResourceGateway) List(ctx context.Context, session *domain.Session) ([]files.Entry, error) {
	if g.gate.Authorize(ctx, session) != AccessAllowed {
		return nil, ErrAccessDenied
	}
	entries, err := g.catalog.List()
	if err != nil {
		observability.RecordResourceAccess(ctx, "list", "error")
		return nil, err
	}
	observability.RecordResourceAccess(ctx, "list", "served")
	return entries, nil
}

func (g *ResourceGateway) Open(ctx context.Context, session *domain.Session, name string) (*files.Handle, error) {
	if g.gate.Authorize(ctx, session) != AccessAllowed {
		return nil, ErrAccessDenied
	}
	clean, ok := SanitizeFileName(name)
	if !ok {
		observability.RecordResourceAccess(ctx, "open", "not_found")
		return nil, ErrFileNotFound
	}
	h, err := g.catalog.Open(clean)
	if err != nil {
		if errors.Is(err, files.ErrNotExist) {
			observability.RecordResourceAccess(ctx, "open", "not_found")
			return nil, ErrFileNotFound
		}
		observability.RecordResourceAccess(ctx, "open", "error")
		return nil, err
	}
	observability.RecordResourceAccess(ctx, "open", "served")
	return h, nil
}

// SanitizeFileName accepts only bare, non-hidden base names.
func SanitizeFileName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", false
	}
	if strings.HasPrefix(name, ".") || filepath.Base(name) != name {
		return "", false
	}
	return name, true
}
