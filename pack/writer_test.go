package pack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/packpipe/compiler"
	"github.com/ridoystarlord/packpipe/model"
)

func compileFixture(t *testing.T) *compiler.Graph {
	t.Helper()
	g, err := compiler.Compile(compiler.Input{
		BundleName:  "HRM",
		Version:     "1.0.0",
		Description: "Employee tracking",
		Author:      "hr-team",
		Tables: []compiler.TableInput{
			{Name: "XX_Employee", Columns: model.ParseColumnSet("Name,L#Status")},
			{Name: "XX_Contract", Master: "XX_Employee", Columns: model.ParseColumnSet("D#StartDate,A#Salary")},
		},
	}, compiler.DefaultBases())
	require.NoError(t, err)
	return g
}

func TestWriteGraphArchive(t *testing.T) {
	dir := t.TempDir()
	g := compileFixture(t)

	zipPath, err := NewWriter(dir).WriteGraph(g)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "HRM_Model_1_0_0.zip"), zipPath)

	// the temporary tree is gone once the archive exists
	_, err = os.Stat(filepath.Join(dir, "HRM_Model"))
	assert.True(t, os.IsNotExist(err))

	data, err := ReadManifest(zipPath)
	require.NoError(t, err)
	doc := string(data)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `Client="0-SYSTEM-System"`)
	assert.Contains(t, doc, `Name="HRM_Model"`)
	assert.Contains(t, doc, "<TableName>XX_Employee</TableName>")
	assert.Contains(t, doc, "<AccessLevel>4</AccessLevel>")
	assert.Contains(t, doc, "<AccessLevel>3</AccessLevel>")

	// tables are emitted before any window
	assert.Less(t, strings.Index(doc, "<AD_Table "), strings.Index(doc, "<AD_Window "))
	// elements before tables, menus last
	assert.Less(t, strings.Index(doc, "<AD_Element "), strings.Index(doc, "<AD_Table "))
	assert.Less(t, strings.Index(doc, "<AD_Field "), strings.Index(doc, "<AD_Menu "))

	assert.Equal(t, g.RecordCount(), strings.Count(doc, `type="table"`))
}

func TestWriteGraphChildTabLink(t *testing.T) {
	dir := t.TempDir()
	g := compileFixture(t)

	zipPath, err := NewWriter(dir).WriteGraph(g)
	require.NoError(t, err)
	data, err := ReadManifest(zipPath)
	require.NoError(t, err)
	doc := string(data)

	link := g.Windows[0].Tabs[1].LinkColumnID
	require.NotZero(t, link)

	tabRegion := doc[strings.Index(doc, "<TabLevel>1</TabLevel>"):]
	tabRegion = tabRegion[:strings.Index(tabRegion, "</AD_Tab>")]
	assert.Contains(t, tabRegion, "<AD_Column_ID>")
}

func TestWriteGraphRepeatable(t *testing.T) {
	g := compileFixture(t)

	first, err := NewWriter(t.TempDir()).WriteGraph(g)
	require.NoError(t, err)
	second, err := NewWriter(t.TempDir()).WriteGraph(g)
	require.NoError(t, err)

	a, err := ReadManifest(first)
	require.NoError(t, err)
	b, err := ReadManifest(second)
	require.NoError(t, err)

	// identical line structure, only UUID lines may differ
	aLines := strings.Split(string(a), "\n")
	bLines := strings.Split(string(b), "\n")
	require.Equal(t, len(aLines), len(bLines))
	for i := range aLines {
		if strings.Contains(aLines[i], "_UU>") {
			continue
		}
		assert.Equal(t, aLines[i], bLines[i], "line %d", i+1)
	}
}

func TestManifestNamespaceStableUUIDs(t *testing.T) {
	g := compileFixture(t)

	w := NewWriter("")
	w.Namespace = "7a1f3d2c-9b5e-4f0a-8c6d-2e4b1a9f7c3d"

	first := w.Manifest(g)
	second := w.Manifest(g)
	assert.Equal(t, string(first), string(second))

	other := NewWriter("")
	other.Namespace = "0d9c8b7a-6f5e-4d3c-8b1a-2f3e4d5c6b7a"
	assert.NotEqual(t, string(first), string(other.Manifest(g)))

	// without a namespace every write mints new UUIDs
	fresh := NewWriter("")
	assert.NotEqual(t, string(fresh.Manifest(g)), string(fresh.Manifest(g)))
}

func TestWriteDataPack(t *testing.T) {
	dir := t.TempDir()
	records := []DataRecord{
		{TableName: "mp_meter", Values: map[string]string{
			"mp_meter_id":  "1000001",
			"mp_meter_uu":  "uuid_generate_v4()",
			"name":         "Main <Meter> & Co",
			"created":      "NOW()",
			"datefrom":     "2024-03-01",
			"isactive":     "true",
			"ad_client_id": "0",
		}},
		{TableName: "a_asset", Values: map[string]string{
			"a_asset_id": "2000001",
			"name":       "Pump",
		}},
	}

	zipPath, err := NewWriter(dir).WriteDataPack("maintenance_seed", "", records)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "maintenance_seed_2Pack.zip"), zipPath)

	data, err := ReadManifest(zipPath)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, `Name="maintenance_seed" Version="1.0.0"`)
	assert.Contains(t, doc, `<mp_meter action="insert">`)
	assert.Contains(t, doc, `<a_asset action="insert">`)

	// placeholders resolved before emission
	assert.NotContains(t, doc, "NOW()")
	assert.NotContains(t, doc, "uuid_generate_v4()")
	assert.Contains(t, doc, "<datefrom>2024-03-01 00:00:00</datefrom>")
	assert.Contains(t, doc, "<isactive>Y</isactive>")
	assert.Contains(t, doc, "Main &lt;Meter&gt; &amp; Co")

	// records keep their given order
	assert.Less(t, strings.Index(doc, "<mp_meter "), strings.Index(doc, "<a_asset "))

	// scope flags lead each record
	meterRegion := doc[strings.Index(doc, "<mp_meter "):strings.Index(doc, "</mp_meter>")]
	assert.Less(t, strings.Index(meterRegion, "<ad_client_id>"), strings.Index(meterRegion, "<mp_meter_id>"))
	assert.Less(t, strings.Index(meterRegion, "<isactive>"), strings.Index(meterRegion, "<datefrom>"))
}

func TestNormalizeValue(t *testing.T) {
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, NormalizeValue("NOW()"))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, NormalizeValue("current_timestamp"))
	assert.Len(t, NormalizeValue("uuid_generate_v4()"), 36)
	assert.Equal(t, "2024-01-15 00:00:00", NormalizeValue("2024-01-15"))
	assert.Equal(t, "2024-01-15 08:30:00", NormalizeValue("2024-01-15 08:30:00"))
	assert.Equal(t, "Y", NormalizeValue("true"))
	assert.Equal(t, "N", NormalizeValue("FALSE"))
	assert.Equal(t, "plain", NormalizeValue("plain"))
	assert.Equal(t, "1000001", NormalizeValue("1000001"))
}

func TestReadManifestBareDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PackOut.xml")
	require.NoError(t, os.WriteFile(path, []byte("<idempiere/>"), 0644))

	data, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "<idempiere/>", string(data))
}

func TestReadManifestRootFallback(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "odd.zip")
	require.NoError(t, zipDocument(zipPath, "Export.xml", []byte("<idempiere/>")))

	data, err := ReadManifest(zipPath)
	require.NoError(t, err)
	assert.Equal(t, "<idempiere/>", string(data))
}

func TestReadManifestMissing(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	require.NoError(t, zipDocument(zipPath, "notes.txt", []byte("nothing")))

	_, err := ReadManifest(zipPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifest document found")
}
