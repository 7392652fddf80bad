package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// ExportJSONL writes every subscribed subscriber, optionally restricted to
// one locale, to path as JSON Lines for the bulk-email composer. The file is
// replaced atomically. It returns the number of records written.
func (s *Subscribers) ExportJSONL(ctx context.Context, path, locale string) (int, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	if !s.b.attached {
		return 0, types.ErrBackendDetached
	}

	sb := sq.Select(s.def.selectColumns()...).
		From(s.def.table).
		Where(sq.Eq{"subscribed": true}).
		OrderBy("created_at", s.def.idColumn)
	if locale != "" {
		sb = sb.Where(sq.Eq{"locale": locale})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building export query: %w", err)
	}
	rows, err := s.b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		sub, err := s.def.scan(rows)
		if err != nil {
			return 0, fmt.Errorf("scanning subscriber: %w", err)
		}
		rec, err := json.Marshal(sub)
		if err != nil {
			return 0, fmt.Errorf("encoding subscriber %s: %w", sub.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating subscribers: %w", err)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// ImportJSONL inserts the subscribers found in a JSONL file, skipping lines
// that do not decode or validate and emails already present. It returns the number of
// subscribers added.
func (s *Subscribers) ImportJSONL(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, rec := range records {
		var sub types.Subscriber
		if err := json.Unmarshal(rec, &sub); err != nil {
			s.b.log.Warn("skipping subscriber record", "path", path, "err", err)
			continue
		}
		sub.ID = ""
		if _, err := s.Create(ctx, sub); err != nil {
			if errors.Is(err, types.ErrDuplicate) {
				continue
			}
			if errors.Is(err, types.ErrInvalidData) {
				s.b.log.Warn("skipping invalid subscriber", "path", path, "email", sub.Email, "err", err)
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
