package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/files"
)

type countingCatalog struct {
	FileCatalog
	calls int
}

func (c *countingCatalog) List() ([]files.Entry, error) {
	c.calls++
	return c.FileCatalog.List()
}

func (c *countingCatalog) Open(name string) (*files.Handle, error) {
	c.calls++
	return c.FileCatalog.Open(name)
}

func newGatewayForTest(t *testing.T) (*ResourceGateway, *countingCatalog, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{"guide.pdf": "guide", "bonus.zip": "bonus"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(dir), "outside.txt"), []byte("secret"), 0o600); err != nil {
		t.Fatalf("write outside: %v", err)
	}
	catalog := &countingCatalog{FileCatalog: files.NewDirCatalog(dir)}
	gate := NewSessionGate(NewInMemorySessionStore(), time.Hour)
	return NewResourceGateway(gate, catalog), catalog, dir
}

func TestResourceGatewayDeniesLockedSessionsWithoutTouchingFiles(t *testing.T) {
	ctx := context.Background()
	gateway, catalog, _ := newGatewayForTest(t)

	for _, session := range []*domain.Session{nil, {ID: "locked"}} {
		if _, err := gateway.List(ctx, session); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("list: expected ErrAccessDenied, got %v", err)
		}
		if _, err := gateway.Open(ctx, session, "guide.pdf"); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("open existing: expected ErrAccessDenied, got %v", err)
		}
		if _, err := gateway.Open(ctx, session, "missing.pdf"); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("open missing: expected ErrAccessDenied, got %v", err)
		}
	}
	if catalog.calls != 0 {
		t.Fatalf("catalog must not be consulted for denied sessions, got %d calls", catalog.calls)
	}
}

func TestResourceGatewayServesEveryListedFileToUnlockedSession(t *testing.T) {
	ctx := context.Background()
	gateway, _, _ := newGatewayForTest(t)
	session := &domain.Session{ID: "open"}
	session.MarkRedeemed("A1", time.Now())

	entries, err := gateway.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, got %+v", entries)
	}
	for _, entry := range entries {
		h, err := gateway.Open(ctx, session, entry.Name)
		if err != nil {
			t.Fatalf("open %s: %v", entry.Name, err)
		}
		body, err := io.ReadAll(h)
		_ = h.Close()
		if err != nil || int64(len(body)) != entry.Size {
			t.Fatalf("read %s: %q %v", entry.Name, body, err)
		}
	}
}

func TestResourceGatewayRejectsTraversalAndMissingFiles(t *testing.T) {
	ctx := context.Background()
	gateway, _, _ := newGatewayForTest(t)
	session := &domain.Session{ID: "open", RedeemedFlag: true}

	for _, name := range []string{"missing.pdf", "../outside.txt", "..", ".", "", "a/b", `..\outside.txt`, ".env"} {
		if _, err := gateway.Open(ctx, session, name); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("Open(%q): expected ErrFileNotFound, got %v", name, err)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "guide.pdf", want: "guide.pdf", ok: true},
		{in: " guide.pdf ", want: "guide.pdf", ok: true},
		{in: "my file.zip", want: "my file.zip", ok: true},
		{in: "../etc/passwd", ok: false},
		{in: "/etc/passwd", ok: false},
		{in: ".hidden", ok: false},
		{in: "a\x00b", ok: false},
	}
	for _, tc := range cases {
		got, ok := SanitizeFileName(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
