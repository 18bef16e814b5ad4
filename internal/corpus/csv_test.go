package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naicstag/internal/normalizer"
)

const cleanedCSV = "\ufeffsubsector_code,subsector_name,cleaned_content\n" +
	"111,Crop Production,farm crop grow\n" +
	"112,Animal Production,livestock cattl ranch\n" +
	"\n" +
	"441,Motor Vehicle Dealers,\"car dealer, auto\"\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVProvider_LoadCleaned(t *testing.T) {
	path := writeFile(t, "subsectors.csv", cleanedCSV)
	recs, err := NewCSVProvider(path, DefaultColumns(), nil).Load()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "111", recs[0].Code)
	assert.Equal(t, "Crop Production", recs[0].Name)
	assert.Equal(t, "farm crop grow", recs[0].Content)
	assert.Equal(t, "car dealer, auto", recs[2].Content)
}

func TestCSVProvider_LoadTSV(t *testing.T) {
	content := "subsector_code\tsubsector_name\tcleaned_content\n11\tAgriculture\tfarm crop\n"
	path := writeFile(t, "subsectors.tsv", content)
	recs, err := NewCSVProvider(path, DefaultColumns(), nil).Load()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "farm crop", recs[0].Content)
}

func TestCSVProvider_RawColumnIsNormalized(t *testing.T) {
	content := "code,name,description\n11,Agriculture,\"Farming industry: crops, livestock & 24/7 ranching!\"\n"
	path := writeFile(t, "raw.csv", content)
	cols := Columns{Code: "code", Name: "name", Raw: "description"}
	recs, err := NewCSVProvider(path, cols, normalizer.Default()).Load()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "farm crop livestock ranch", recs[0].Content)
}

func TestCSVProvider_Errors(t *testing.T) {
	_, err := NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv"), DefaultColumns(), nil).Load()
	assert.Error(t, err)

	empty := writeFile(t, "empty.csv", "")
	_, err = NewCSVProvider(empty, DefaultColumns(), nil).Load()
	assert.ErrorContains(t, err, "empty corpus file")

	noContent := writeFile(t, "nocontent.csv", "subsector_code,subsector_name\n11,Agriculture\n")
	_, err = NewCSVProvider(noContent, DefaultColumns(), nil).Load()
	assert.ErrorContains(t, err, "cleaned_content")

	noCode := writeFile(t, "nocode.csv", "subsector_code,subsector_name,cleaned_content\n,Agriculture,farm\n")
	_, err = NewCSVProvider(noCode, DefaultColumns(), nil).Load()
	assert.ErrorContains(t, err, "line 2")

	raw := writeFile(t, "raw.csv", "code,name,description\n11,Agriculture,farming\n")
	_, err = NewCSVProvider(raw, Columns{Code: "code", Name: "name", Raw: "description"}, nil).Load()
	assert.ErrorContains(t, err, "normalizer")
}

func TestClean_WritesCleanedExport(t *testing.T) {
	in := "code,name,description\n" +
		"11,Agriculture,Growing crops and raising livestock\n" +
		"44,Retail,Retail industry stores selling merchandise\n"
	var out bytes.Buffer
	cols := Columns{Code: "code", Name: "name", Raw: "description"}
	n, err := Clean(NewReader(strings.NewReader(in), "in.csv"), &out, cols, normalizer.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := Read(NewReader(&out, "out.csv"), DefaultColumns(), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "grow crop and rais livestock", recs[0].Content)
	assert.NotContains(t, recs[1].Content, "industri")
}

func TestClean_RequiresRawColumn(t *testing.T) {
	_, err := Clean(NewReader(strings.NewReader(cleanedCSV), "x.csv"), &bytes.Buffer{}, DefaultColumns(), normalizer.Default())
	assert.Error(t, err)
}
