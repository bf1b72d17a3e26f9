package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseCSV(t *testing.T) {
	data := "\xEF\xBB\xBFid,name\nint,string\n\"1\",\"a, b\"\n2\n\"multi\nline\",x\n"

	rows, err := ParseCSV([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"id", "name"},
		{"int", "string"},
		{"1", "a, b"},
		{"2"},
		{"multi\nline", "x"},
	}, rows)
}

func TestReadCSVWithSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "item.csv")

	writeFile(t, path, "id,name\nint,string\n,\n1,sword\n")
	writeFile(t, filepath.Join(dir, "item.meta.yaml"), `
class_name: Weapon
name_row: 1
strict: true
unique_fields: [id, name]
get-keys: id
`)

	s, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, path, s.Name)
	assert.Len(t, s.Rows, 4)
	assert.Equal(t, map[string]string{
		"class_name":    "Weapon",
		"name_row":      "1",
		"strict":        "true",
		"unique_fields": "id,name",
		"get-keys":      "id",
	}, s.Meta)
}

func TestReadCSVClassFromFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop_table.csv")
	writeFile(t, path, "id\nint\n")

	s, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"class_name": "drop_table"}, s.Meta)
}

func TestReadCSVKeepsSidecarClassNameSpelling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "item.csv")

	writeFile(t, path, "id\nint\n")
	writeFile(t, filepath.Join(dir, "item.meta.yaml"), "Class-Name: Weapon\n")

	s, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Class-Name": "Weapon"}, s.Meta)
}

func TestReadSidecarRejectsNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.meta.yaml")
	writeFile(t, path, "class_name: {a: b}\n")

	_, err := ReadSidecar(path)
	require.Error(t, err)
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "item.meta.yaml"), SidecarPath(filepath.Join("a", "item.csv")))
	assert.Equal(t, "item", BaseName(filepath.Join("a", "item.csv")))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"b.csv",
		"a.CSV",
		"~$a.csv",
		"notes.txt",
		"sub/c.csv",
		".hidden/d.csv",
		"b.meta.yaml",
	} {
		writeFile(t, filepath.Join(dir, name), "x\n")
	}

	single := filepath.Join(dir, "b.csv")

	got, err := Discover([]string{dir, single})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.CSV"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "sub", "c.csv"),
	}, got)

	_, err = Discover([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), "id\nint\n")
	writeFile(t, filepath.Join(dir, "b.csv"), "id\nint\n")

	sheets, err := ReadAll([]string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")})
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "b", sheets[1].Meta["class_name"])

	_, err = ReadAll([]string{filepath.Join(dir, "c.csv")})
	require.Error(t, err)
}
