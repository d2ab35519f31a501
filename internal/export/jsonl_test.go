package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr30303/taxiDriver/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			ID:              "0123456789abcdef01234567",
			Lat:             37.5663,
			Lng:             126.97795,
			Type:            model.TypePublic,
			Description:     "시청 화장실 | 서울 중구 세종대로 110 & 뒤편",
			CreatedBy:       model.CreatedByMasterData,
			Source:          model.SourceMaster,
			LikedUserIDs:    []string{},
			DislikedUserIDs: []string{},
			Name:            "시청 화장실",
			SourceFiles:     []string{"seoul.csv"},
			SourceRowIDs:    []string{"1"},
		},
		{ID: "fedcba9876543210fedcba98", LikedUserIDs: []string{}, DislikedUserIDs: []string{}},
	}
}

func TestEncodeOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleRecords()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"name":"시청 화장실"`, "hangul is not escaped")
	assert.Contains(t, lines[0], `& 뒤편`, "html characters are not escaped")
	assert.Contains(t, lines[0], `"likedUserIds":[]`)
	assert.Contains(t, lines[0], `"createdBy":"master-data"`)
	assert.True(t, strings.HasPrefix(lines[0], `{"id":"0123456789abcdef01234567","lat":37.5663,"lng":126.97795,`))
}

func TestWriteAndReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "restrooms_master.jsonl")
	records := sampleRecords()

	require.NoError(t, WriteJSONL(path, records))

	got, err := ReadJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteIsByteStable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonl")
	b := filepath.Join(dir, "b.jsonl")
	require.NoError(t, WriteJSONL(a, sampleRecords()))
	require.NoError(t, WriteJSONL(b, sampleRecords()))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestDecodeSkipsBlankLinesAndReportsBadLine(t *testing.T) {
	recs, err := Decode(strings.NewReader("{\"id\":\"a\"}\n\n{\"id\":\"b\"}\n"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].ID)

	_, err = Decode(strings.NewReader("{\"id\":\"a\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
