package archive

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the HEAD and PUT requests the archive issues, keeping
// objects in memory. Path-style addressing: /bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodHead:
		if body, ok := f.objects[key]; ok {
			return response(http.StatusOK, http.Header{"Content-Length": {strconv.Itoa(len(body))}}), nil
		}
		return response(http.StatusNotFound, http.Header{}), nil
	case http.MethodPut:
		if f.failPut {
			return response(http.StatusForbidden, http.Header{}), nil
		}
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		return response(http.StatusOK, http.Header{"ETag": {`"etag"`}}), nil
	}
	return response(http.StatusNotImplemented, http.Header{}), nil
}

func response(status int, h http.Header) *http.Response {
	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(bytes.NewReader(nil))}
}

func newFakeS3(t *testing.T) (*S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.RetryMaxAttempts = 1
	})
	return &S3{client: client, bucket: "bid-sheets"}, fake
}

func TestS3Put(t *testing.T) {
	s, fake := newFakeS3(t)
	ctx := context.Background()

	loc, err := s.Put(ctx, "duggal/2024/03/id-Acme.xlsx", bytes.NewReader([]byte("workbook bytes")))
	require.NoError(t, err)
	assert.Equal(t, "s3://bid-sheets/duggal/2024/03/id-Acme.xlsx", loc)
	require.Contains(t, fake.objects, "duggal/2024/03/id-Acme.xlsx")
	assert.Contains(t, string(fake.objects["duggal/2024/03/id-Acme.xlsx"]), "workbook bytes")

	_, err = s.Put(ctx, "duggal/2024/03/id-Acme.xlsx", bytes.NewReader([]byte("again")))
	assert.ErrorIs(t, err, ErrExists)
}

func TestS3PutFailure(t *testing.T) {
	s, fake := newFakeS3(t)
	fake.failPut = true

	_, err := s.Put(context.Background(), "quad/x.xlsx", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.ErrorContains(t, err, "s3://bid-sheets/quad/x.xlsx")
	assert.NotContains(t, fake.objects, "quad/x.xlsx")
}

func TestNewS3(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Bucket:          "bid-sheets",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, s.Driver())

	_, err = NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
