package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "eu-central",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})

	return &Client{s3: client}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("https://fsn1.your-objectstorage.com", "eu-central", "ak", "sk")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestGetObject(t *testing.T) {
	t.Parallel()

	manifest := "apiVersion: v1\nkind: ConfigMap\n"
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/workloads/app.yaml", r.URL.Path)
		_, _ = io.WriteString(w, manifest)
	}))

	data, err := client.GetObject(context.Background(), "workloads", "app.yaml")
	require.NoError(t, err)
	assert.Equal(t, manifest, string(data))
}

func TestGetObject_Missing(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
	}))

	_, err := client.GetObject(context.Background(), "workloads", "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	var got []byte
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/workloads/app.yaml", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = body
		w.WriteHeader(http.StatusOK)
	}))

	payload := []byte("kind: Deployment\n")
	require.NoError(t, client.PutObject(context.Background(), "workloads", "app.yaml", payload))
	assert.Equal(t, payload, got)
}

func TestEnsureBucket_AlreadyExists(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.EnsureBucket(context.Background(), "workloads"))
}

func TestEnsureBucket_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	var created bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	require.NoError(t, client.EnsureBucket(context.Background(), "workloads"))
	assert.True(t, created)
}
