package capability

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// fakeAWS — S3 и STS на одном httptest сервере.
func fakeAWS(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()

	objects := make(map[string]string)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/":
			_ = r.ParseForm()
			if r.Form.Get("Action") != "GetCallerIdentity" {
				t.Errorf("unexpected STS action: %s", r.Form.Get("Action"))
			}
			w.Header().Set("Content-Type", "text/xml")
			_, _ = io.WriteString(w, `<GetCallerIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <GetCallerIdentityResult>
    <Arn>arn:aws:iam::123456789012:user/test</Arn>
    <UserId>AIDTEST</UserId>
    <Account>123456789012</Account>
  </GetCallerIdentityResult>
  <ResponseMetadata><RequestId>req-1</RequestId></ResponseMetadata>
</GetCallerIdentityResponse>`)

		case r.Method == http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = string(data)
			w.Header().Set("ETag", `"etag-1"`)
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>gone</Message></Error>`)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("ETag", `"etag-1"`)
			_, _ = io.WriteString(w, body)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)
	return server, objects
}

func awsRegistry(t *testing.T, endpoint string) *Registry {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	r := NewRegistry()
	err := RegisterAWS(context.Background(), r, AWSConfig{Region: "us-east-1", Endpoint: endpoint})
	if err != nil {
		t.Fatalf("register aws: %v", err)
	}
	return r
}

func TestAWS_Registered(t *testing.T) {
	r := awsRegistry(t, "http://localhost:1")

	for _, method := range []string{
		"CreateBucket", "DeleteBucket", "PutObject", "GetObject",
		"HeadObject", "DeleteObject", "ListObjectsV2", "ListBuckets",
	} {
		if !r.Has(FamilyS3, method) {
			t.Errorf("S3.%s should be registered", method)
		}
	}
	if !r.Has(FamilySTS, "GetCallerIdentity") {
		t.Error("STS.GetCallerIdentity should be registered")
	}
	for _, method := range []string{
		"CreateFunction", "UpdateFunctionCode", "UpdateFunctionConfiguration", "GetFunction",
		"DeleteFunction", "PublishVersion", "ListVersionsByFunction", "Invoke",
	} {
		if !r.Has(FamilyLambda, method) {
			t.Errorf("Lambda.%s should be registered", method)
		}
	}
	if r.Version(FamilyS3) != S3APIVersion || r.Version(FamilySTS) != STSAPIVersion ||
		r.Version(FamilyLambda) != LambdaAPIVersion {
		t.Error("unexpected family versions")
	}
}

func TestAWS_PutAndGetObject(t *testing.T) {
	server, objects := fakeAWS(t)
	r := awsRegistry(t, server.URL)
	ctx := context.Background()

	put, err := r.Invoke(ctx, FamilyS3, "PutObject", map[string]any{
		"Bucket": "demo-bucket",
		"Key":    "hello.txt",
		"Body":   []byte("hello world"),
	})
	if err != nil {
		t.Fatalf("put object: %v", err)
	}
	if put["ETag"] != `"etag-1"` {
		t.Errorf("unexpected ETag: %v", put["ETag"])
	}

	stored, ok := objects["/demo-bucket/hello.txt"]
	if !ok {
		t.Fatalf("object not stored at path-style key, got %v", objects)
	}
	if !strings.Contains(stored, "hello world") {
		t.Errorf("unexpected stored body: %q", stored)
	}

	got, err := r.Invoke(ctx, FamilyS3, "GetObject", map[string]any{
		"Bucket": "demo-bucket",
		"Key":    "hello.txt",
	})
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	if !strings.Contains(got["Body"].(string), "hello world") {
		t.Errorf("unexpected body: %v", got["Body"])
	}
}

func TestAWS_GetObjectMissing(t *testing.T) {
	server, _ := fakeAWS(t)
	r := awsRegistry(t, server.URL)

	_, err := r.Invoke(context.Background(), FamilyS3, "GetObject", map[string]any{
		"Bucket": "demo-bucket",
		"Key":    "missing.txt",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Operation != "GetObject" {
		t.Errorf("unexpected operation: %s", apiErr.Operation)
	}
}

func TestAWS_GetCallerIdentity(t *testing.T) {
	server, _ := fakeAWS(t)
	r := awsRegistry(t, server.URL)

	result, err := r.Invoke(context.Background(), FamilySTS, "GetCallerIdentity", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["Account"] != "123456789012" {
		t.Errorf("unexpected account: %v", result["Account"])
	}
	if result["Arn"] != "arn:aws:iam::123456789012:user/test" {
		t.Errorf("unexpected arn: %v", result["Arn"])
	}
}

// fakeLambda — REST JSON API Lambda для CreateFunction и Invoke.
func fakeLambda(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()

	var created map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/2015-03-31/functions":
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode create request: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"FunctionName":"demo","FunctionArn":"arn:aws:lambda:us-east-1:123456789012:function:demo","Version":"1","CodeSize":8}`)

		case r.Method == http.MethodPost && r.URL.Path == "/2015-03-31/functions/demo/invocations":
			data, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Amz-Executed-Version", "1")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"echo":` + string(data) + `}`))

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &created
}

func TestAWS_LambdaCreateFunctionWithZip(t *testing.T) {
	server, created := fakeLambda(t)
	r := awsRegistry(t, server.URL)

	result, err := r.Invoke(context.Background(), FamilyLambda, "CreateFunction", map[string]any{
		"FunctionName": "demo",
		"Runtime":      "python3.12",
		"Handler":      "handler.main",
		"Role":         "arn:aws:iam::123456789012:role/lambda",
		"Code":         map[string]any{"ZipFile": []byte("zipbytes")},
	})
	if err != nil {
		t.Fatalf("create function: %v", err)
	}
	if result["FunctionArn"] != "arn:aws:lambda:us-east-1:123456789012:function:demo" {
		t.Errorf("unexpected arn: %v", result["FunctionArn"])
	}
	if result["Version"] != "1" {
		t.Errorf("unexpected version: %v", result["Version"])
	}

	code, _ := (*created)["Code"].(map[string]any)
	if code["ZipFile"] != base64.StdEncoding.EncodeToString([]byte("zipbytes")) {
		t.Errorf("zip should be sent as is, got %v", code["ZipFile"])
	}
}

func TestAWS_LambdaInvoke(t *testing.T) {
	server, _ := fakeLambda(t)
	r := awsRegistry(t, server.URL)

	result, err := r.Invoke(context.Background(), FamilyLambda, "Invoke", map[string]any{
		"FunctionName": "demo",
		"Payload":      map[string]any{"n": 1},
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result["Payload"] != `{"echo":{"n":1}}` {
		t.Errorf("unexpected payload: %v", result["Payload"])
	}
	if result["ExecutedVersion"] != "1" {
		t.Errorf("unexpected executed version: %v", result["ExecutedVersion"])
	}
}
