package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/table"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoad_FixedWidthGzip(t *testing.T) {
	dir := t.TempDir()
	dct := writeFile(t, dir, "2002FemResp.dct", []byte(respDictionary))
	data := writeFile(t, dir, "2002FemResp.dat.gz", gzipBytes(t,
		respLine("1", "1", "2", "1.0")+"\n"+respLine("2", "1", "0", "1.0")+"\n"))

	l := NewLoader(nil)
	tbl, err := l.Load(context.Background(), Spec{Data: data, Dictionary: dct})
	require.NoError(t, err)

	assert.Equal(t, "2002FemResp", tbl.Name)
	assert.Equal(t, 2, tbl.Len())
	v, _ := tbl.Record(0).Get("pregnum")
	assert.Equal(t, table.Int(2), v)
}

func TestLoad_GzipDetectedWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "resp.csv", gzipBytes(t, "caseid,pregnum\n1,2\n"))

	tbl, err := NewLoader(nil).Load(context.Background(), Spec{Data: data})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestLoad_CSVFileURI(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "preg.csv", []byte("caseid\n1\n1\n"))

	tbl, err := NewLoader(nil).Load(context.Background(), Spec{Name: "preg", Data: "file://" + data})
	require.NoError(t, err)
	assert.Equal(t, "preg", tbl.Name)
	assert.Equal(t, 2, tbl.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), Spec{Data: filepath.Join(t.TempDir(), "absent.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_FixedRequiresDictionary(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), Spec{Format: FormatFixed, Data: "resp.dat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a dictionary")
}

func TestLoad_EmptyData(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), Spec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data location is required")
}

func TestSpec_ResolveFormat(t *testing.T) {
	tests := []struct {
		spec    Spec
		want    Format
		wantErr bool
	}{
		{Spec{Data: "a.csv"}, FormatCSV, false},
		{Spec{Data: "a.CSV.gz"}, FormatCSV, false},
		{Spec{Data: "a.dat.gz", Dictionary: "a.dct"}, FormatFixed, false},
		{Spec{Data: "a.dat.gz"}, "", true},
		{Spec{Data: "a.csv", Format: FormatFixed}, FormatFixed, false},
		{Spec{Data: "a.csv", Format: "parquet"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Data+string(tt.spec.Format), func(t *testing.T) {
			got, err := tt.spec.ResolveFormat()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_TableName(t *testing.T) {
	assert.Equal(t, "2002FemPreg", Spec{Data: "/data/2002FemPreg.dat.gz"}.TableName())
	assert.Equal(t, "resp", Spec{Data: "s3://bucket/nsfg/resp.csv"}.TableName())
	assert.Equal(t, "named", Spec{Name: "named", Data: "x.csv"}.TableName())
}

// fakeS3 serves path-style GetObject requests from memory.
type fakeS3 struct {
	objects map[string][]byte
	paths   []string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.paths = append(f.paths, req.URL.Path)
	key := strings.TrimPrefix(req.URL.Path, "/")
	body, ok := f.objects[key]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)),
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        http.Header{"Content-Type": {"application/octet-stream"}},
		Request:       req,
	}, nil
}

func newFakeS3Opener(t *testing.T, objects map[string][]byte) (*Opener, *fakeS3) {
	t.Helper()
	rt := &fakeS3{objects: objects}
	client, err := NewS3Client(context.Background(),
		S3Config{Endpoint: "https://mock.s3.local", PathStyle: true},
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
		config.WithHTTPClient(&http.Client{Transport: rt}),
	)
	require.NoError(t, err)
	return &Opener{S3: client}, rt
}

func TestLoad_S3Object(t *testing.T) {
	opener, rt := newFakeS3Opener(t, map[string][]byte{
		"nsfg/preg.csv.gz": gzipBytes(t, "caseid\n1\n1\n2\n"),
	})
	l := &Loader{Opener: opener}

	tbl, err := l.Load(context.Background(), Spec{Data: "s3://nsfg/preg.csv.gz"})
	require.NoError(t, err)
	assert.Equal(t, "preg", tbl.Name)
	assert.Equal(t, 3, tbl.Len())
	require.NotEmpty(t, rt.paths)
	assert.Equal(t, "/nsfg/preg.csv.gz", rt.paths[0])
}

func TestLoad_S3MissingObject(t *testing.T) {
	opener, _ := newFakeS3Opener(t, map[string][]byte{})
	l := &Loader{Opener: opener}

	_, err := l.Load(context.Background(), Spec{Data: "s3://nsfg/absent.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get s3://nsfg/absent.csv")
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := parseS3URI("s3://nsfg/2002/preg.dat.gz")
	require.NoError(t, err)
	assert.Equal(t, "nsfg", bucket)
	assert.Equal(t, "2002/preg.dat.gz", key)

	_, _, err = parseS3URI("s3://nsfg")
	assert.Error(t, err)
}

func TestS3ConfigFromEnv(t *testing.T) {
	t.Setenv("TALLY_S3_REGION", "eu-west-1")
	t.Setenv("TALLY_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("TALLY_S3_PATH_STYLE", "TRUE")

	cfg := S3ConfigFromEnv()
	assert.Equal(t, S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}, cfg)
}
