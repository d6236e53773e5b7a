package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/hanreader/pkg/wordid"
)

const testDictionary = `{"words": [
  {"id": "1", "word": "사랑", "origin": "愛", "senses": [{"definition": "아끼고 귀중히 여기는 마음", "translation": "love"}], "related": ["2"]},
  {"id": "2", "word": "사랑하다", "senses": [{"translation": "to love"}]},
  {"id": "3", "word": "사랑", "origin": "思量", "senses": [{"translation": "deep thought"}]},
  {"id": "4", "word": "봄", "senses": [{"translation": "spring"}]}
]}`

const testChapter = `<html><head><title>봄</title></head><body><article>
<h1>봄</h1>
<p>봄이 오면 사랑은 다시 피어난다. 사람들은 공원에서 봄을 즐기고 아이들은 꽃 사이를 뛰어다닌다.
나는 벤치에 앉아 오래된 책을 읽으며 따뜻한 햇살을 느꼈다. 바람은 부드럽고 하늘은 맑았다.</p>
<p>그날의 사랑은 조용했고 봄은 길었다. 우리는 저녁이 될 때까지 이야기를 나누며 천천히 걸었다.</p>
</article></body></html>`

// setupCLI writes a config, dictionary and chapter into a temp dir and
// points the loader at them.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "dictionary.json")
	require.NoError(t, os.WriteFile(dictPath, []byte(testDictionary), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter.xhtml"), []byte(testChapter), 0o644))

	cfg := "database:\n  path: \"" + filepath.Join(dir, "vocab.db") + "\"\n" +
		"dictionary:\n  mode: \"offline\"\n  file: \"" + dictPath + "\"\n" +
		"log:\n  level: \"error\"\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	t.Setenv("HANREADER_CONFIG", cfgPath)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestLookupCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "lookup", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "0 사랑 [愛]: love")
	assert.Contains(t, out, "(more)")
	assert.NotContains(t, out, "deep thought")

	out, err = runCLI(t, "lookup", "-expand", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "1 사랑 [思][量]: deep thought")
	assert.Contains(t, out, "2 사랑하다: to love")

	out, err = runCLI(t, "lookup", "없는말")
	require.NoError(t, err)
	assert.Contains(t, out, "no entries")
}

func TestSaveListUnsave(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "save", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved: 사랑 (愛): love")

	out, err = runCLI(t, "save", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "Already saved")

	out, err = runCLI(t, "save", "-entry", "1", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved: 사랑 (思量): deep thought")

	// Saved state survives across runs.
	out, err = runCLI(t, "lookup", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "*0 사랑")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "== unorganized (2) ==")
	assert.Contains(t, out, "Word: 사랑\nDefinition: love\nHanja: 愛")

	out, err = runCLI(t, "unsave", "사랑")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed: 사랑 (愛): love")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "== unorganized (1) ==")
	assert.NotContains(t, out, "Definition: love")
}

func TestListCategoryAndKeys(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "save", "사랑")
	require.NoError(t, err)

	out, err := runCLI(t, "list", "-category", "favorites")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved vocabulary.")

	out, err = runCLI(t, "list", "-category", "unorganized", "-keys")
	require.NoError(t, err)
	key := wordid.Of("사랑", "愛", "love").Key()
	assert.Contains(t, out, "== unorganized (1) ==")
	assert.Contains(t, out, "Key: "+key+"\n")

	out, err = runCLI(t, "unsave", "-key", key)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed: 사랑 (愛): love")

	out, err = runCLI(t, "unsave", "-key", key)
	require.NoError(t, err)
	assert.Contains(t, out, "Already unsaved")

	_, err = runCLI(t, "unsave", "-key", "garbage")
	assert.Error(t, err)
}

func TestSaveErrors(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "save", "-entry", "9", "사랑")
	assert.Error(t, err)

	_, err = runCLI(t, "save", "없는말")
	assert.Error(t, err)

	_, err = runCLI(t, "save")
	assert.ErrorIs(t, err, errUsage)
}

func TestWordsCommand(t *testing.T) {
	dir := setupCLI(t)
	chapter := filepath.Join(dir, "chapter.xhtml")

	out, err := runCLI(t, "words", chapter)
	require.NoError(t, err)
	assert.Contains(t, out, "사랑은\n")

	out, err = runCLI(t, "words", "-lookup", chapter)
	require.NoError(t, err)
	assert.Contains(t, out, "사랑은\tlove")
	assert.Contains(t, out, "봄이\tspring")
}

func TestWordsSentences(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, "words", "-sentences", filepath.Join(dir, "chapter.xhtml"))
	require.NoError(t, err)
	assert.Contains(t, out, "1\t")
	assert.Contains(t, out, "사랑은 다시 피어난다.\n")
}

func TestUnknownCommand(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t)
	assert.ErrorIs(t, err, errUsage)
}

func TestFetchDictWithExistingFile(t *testing.T) {
	setupCLI(t)
	out, err := runCLI(t, "fetch-dict")
	require.NoError(t, err)
	assert.Contains(t, out, "(4 entries)")
}
