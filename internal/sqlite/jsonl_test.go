package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func TestWriteJSONL_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	recs := []json.RawMessage{json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`)}
	require.NoError(t, writeJSONL(path, recs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReadJSONL_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	content := strings.Join([]string{`{"email":"a@pathwei.test"}`, ``, `{broken`, `{"email":"b@pathwei.test"}`}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	recs, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestSubscribers_ExportJSONL(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	for _, s := range []types.Subscriber{
		{Email: "r1@pathwei.test", Locale: "en", Subscribed: true, Source: "blog"},
		{Email: "r2@pathwei.test", Locale: "de", Subscribed: true},
		{Email: "r3@pathwei.test", Locale: "en", Subscribed: false},
	} {
		_, err := b.Subscribers().Create(ctx, s)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "exports", "subscribers.jsonl")
	n, err := b.Subscribers().ExportJSONL(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	var first types.Subscriber
	require.NoError(t, json.Unmarshal(recs[0], &first))
	assert.Equal(t, "r1@pathwei.test", first.Email, "oldest first")
	assert.Equal(t, "blog", first.Source)

	n, err = b.Subscribers().ExportJSONL(ctx, path, "de")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubscribers_ImportJSONL(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	_, err := b.Subscribers().Create(ctx, types.Subscriber{Email: "dup@pathwei.test", Locale: "en", Subscribed: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "import.jsonl")
	content := strings.Join([]string{
		`{"email":"new1@pathwei.test","locale":"fr","subscribed":true}`,
		`{"email":"not-an-email","locale":"en","subscribed":true}`,
		`{"email":"dup@pathwei.test","locale":"en","subscribed":true}`,
		`{"email":123}`,
		`{"email":"new2@pathwei.test","locale":"es","subscribed":false}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	added, err := b.Subscribers().ImportJSONL(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	page, err := b.Subscribers().List(ctx, types.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.TotalItems)
}
