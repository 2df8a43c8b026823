package source

// reader.go opens source files and normalizes their encoding.
//
// Exports from spreadsheet tools often carry a byte-order mark, are
// occasionally saved as UTF-16, or contain stray invalid bytes. Every source
// is passed through a BOM-aware UTF-8 decoder that strips the mark, decodes
// UTF-16 when its BOM says so, and replaces invalid sequences with U+FFFD.

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
)

// Spec describes one source file.
type Spec struct {
	Path   string
	Format string // "json", "csv" or "xml"; inferred from the extension when empty
}

// Label returns the name used for the source in record references.
func (s Spec) Label() string {
	return filepath.Base(s.Path)
}

// FormatOrInferred returns the explicit format, or the one implied by the
// file extension.
func (s Spec) FormatOrInferred() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Path)), ".")
}

// NewReader wraps r with BOM handling and UTF-8 sanitization.
// BOMOverride only strips the mark or switches to UTF-16; the UTF-8
// decoder after it always runs, so invalid bytes are replaced either way.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(transform.Nop),
		unicode.UTF8.NewDecoder(),
	))
}

// Decode reads a single document in the given format.
func Decode(r io.Reader, format, label string) ([]core.Record, error) {
	fn, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("unknown source format %q for %s", format, label)
	}
	records, err := fn(NewReader(r), label)
	if err != nil {
		return nil, fmt.Errorf("decode source %s: %w", label, err)
	}
	return records, nil
}

// ReadFile reads one source file.
func ReadFile(spec Spec) ([]core.Record, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return Decode(f, spec.FormatOrInferred(), spec.Label())
}

// ReadAll reads every source in order. Any unreadable or undecodable file
// aborts the whole read.
func ReadAll(ctx context.Context, specs []Spec) ([]core.SourceRecords, error) {
	out := make([]core.SourceRecords, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := logging.WithFields(ctx, "source", spec.Label(), "format", spec.FormatOrInferred())
		records, err := ReadFile(spec)
		if err != nil {
			log.Error("source unreadable", "path", spec.Path, "error", err)
			return nil, err
		}
		log.Info("source read", "path", spec.Path, "records", len(records))

		out = append(out, core.SourceRecords{Source: spec.Label(), Records: records})
	}
	return out, nil
}
