package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gencat/gencat/internal/dictionary"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

// Document keeps the dictionary in a single JSON file.
//
// Layout:
//
//	{
//	  "<field>": {
//	    "<entry id>": {"canonical": "...", "names": {"<form>": <count>, ...}, "sanitized": "..."},
//	    ...
//	  },
//	  ...
//	  "Decision Stats": [{"score": 95, "decision": "keep", "count": 2}, ...]
//	}
//
// Object key order is significant and is preserved in both directions.
// Top-level keys that are not dictionary fields are ignored on load.
type Document struct {
	path   string
	logger *slog.Logger
}

// NewDocument returns a JSON document backend at path.
func NewDocument(path string, logger *slog.Logger) *Document {
	return &Document{path: path, logger: logger}
}

// Load reads the document into s.
func (d *Document) Load(ctx context.Context, s *dictionary.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(d.path)
	if domainerrors.Is(err, fs.ErrNotExist) {
		return domainerrors.NotFoundf("dictionary %s", d.path)
	}
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "open dictionary %s", d.path)
	}
	defer f.Close()

	if err := decodeDocument(f, s); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "decode dictionary %s", d.path)
	}

	d.logger.Debug("dictionary document read", "path", d.path, "entries", s.EntryCount())
	return nil
}

// Save writes s to a temp file next to the document and renames it into place.
func (d *Document) Save(ctx context.Context, s *dictionary.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDocument(s)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode dictionary")
	}

	if err := writeFileAtomic(d.path, data); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "write dictionary %s", d.path)
	}

	d.logger.Debug("dictionary document written", "path", d.path, "bytes", len(data))
	return nil
}

// Stats returns the decision statistics stored with the document.
func (d *Document) Stats(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(d.path)
	if domainerrors.Is(err, fs.ErrNotExist) {
		return nil, domainerrors.NotFoundf("dictionary %s", d.path)
	}
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "read dictionary %s", d.path)
	}

	var doc struct {
		Stats []statRecord `json:"Decision Stats"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "decode dictionary %s", d.path)
	}

	out := make(map[string]int, len(doc.Stats))
	for _, st := range doc.Stats {
		out[statKeyString(st.Score, st.Decision)] = st.Count
	}
	return out, nil
}

// Close is a no-op; the document is not held open between calls.
func (d *Document) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// encodeDocument renders s with two-space indentation.
func encodeDocument(s *dictionary.Store) ([]byte, error) {
	var buf bytes.Buffer
	w := &docWriter{buf: &buf}

	buf.WriteByte('{')
	for i, field := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		w.key(field)
		buf.WriteByte('{')
		for j, e := range s.Dictionary(field).Entries() {
			if j > 0 {
				buf.WriteByte(',')
			}
			w.key(e.ID)
			buf.WriteByte('{')
			w.key("canonical")
			w.value(e.Canonical)
			buf.WriteByte(',')
			w.key("names")
			buf.WriteByte('{')
			for k, a := range e.Aliases() {
				if k > 0 {
					buf.WriteByte(',')
				}
				w.key(a.Form)
				w.value(a.Count)
			}
			buf.WriteByte('}')
			buf.WriteByte(',')
			w.key("sanitized")
			w.value(e.Normalized)
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}
	if len(s.Fields()) > 0 {
		buf.WriteByte(',')
	}
	w.key(StatsKey)
	w.value(statRecords(s))
	buf.WriteByte('}')

	if w.err != nil {
		return nil, w.err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// docWriter appends JSON scalars without HTML escaping and keeps the first error.
type docWriter struct {
	buf *bytes.Buffer
	err error
}

func (w *docWriter) key(k string) {
	w.value(k)
	w.buf.WriteByte(':')
}

func (w *docWriter) value(v any) {
	if w.err != nil {
		return
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		w.err = err
		return
	}
	w.buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
}

// decodeDocument streams the document so object key order survives.
func decodeDocument(r io.Reader, s *dictionary.Store) error {
	dec := json.NewDecoder(r)

	known := s.Fields()
	return decodeObject(dec, func(field string) error {
		if !slices.Contains(known, field) {
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
		return decodeObject(dec, func(entryID string) error {
			canonical, aliases, err := decodeEntry(dec)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", field, entryID, err)
			}
			return s.Restore(field, entryID, canonical, aliases)
		})
	})
}

func decodeEntry(dec *json.Decoder) (string, []dictionary.Alias, error) {
	var (
		canonical string
		aliases   []dictionary.Alias
	)
	err := decodeObject(dec, func(key string) error {
		switch key {
		case "canonical":
			return dec.Decode(&canonical)
		case "names":
			return decodeObject(dec, func(form string) error {
				var count int
				if err := dec.Decode(&count); err != nil {
					return err
				}
				aliases = append(aliases, dictionary.Alias{Form: form, Count: count})
				return nil
			})
		default:
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
	})
	return canonical, aliases, err
}

// decodeObject consumes one JSON object, calling fn with the decoder
// positioned at each member's value.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
