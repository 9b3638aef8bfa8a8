package capability

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Семейства AWS и версии API, под которые собраны клиенты.
const (
	FamilyS3     = "S3"
	FamilySTS    = "STS"
	FamilyLambda = "Lambda"

	S3APIVersion     = "2006-03-01"
	STSAPIVersion    = "2011-06-15"
	LambdaAPIVersion = "2015-03-31"
)

// AWSConfig — настройки клиентов AWS.
type AWSConfig struct {
	// Region — регион (default: из окружения и профиля).
	Region string

	// Endpoint — свой endpoint (MinIO, LocalStack); включает path-style для S3.
	Endpoint string
}

// RegisterAWS регистрирует семейства S3, STS и Lambda.
func RegisterAWS(ctx context.Context, r *Registry, cfg AWSConfig) error {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	stsClient := sts.NewFromConfig(awsCfg, func(o *sts.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	lambdaClient := lambda.NewFromConfig(awsCfg, func(o *lambda.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	registerS3(r, s3Client)
	registerSTS(r, stsClient)
	registerLambda(r, lambdaClient)
	return nil
}

func registerS3(r *Registry, c *s3.Client) {
	r.Register(FamilyS3, "CreateBucket", SDKCall(FamilyS3, c.CreateBucket))
	r.Register(FamilyS3, "DeleteBucket", SDKCall(FamilyS3, c.DeleteBucket))
	r.Register(FamilyS3, "HeadObject", SDKCall(FamilyS3, c.HeadObject))
	r.Register(FamilyS3, "DeleteObject", SDKCall(FamilyS3, c.DeleteObject))
	r.Register(FamilyS3, "ListObjectsV2", SDKCall(FamilyS3, c.ListObjectsV2))
	r.Register(FamilyS3, "ListBuckets", SDKCall(FamilyS3, c.ListBuckets))
	r.Register(FamilyS3, "PutObject", putObject(c))
	r.Register(FamilyS3, "GetObject", getObject(c))
	r.SetVersion(FamilyS3, S3APIVersion)
}

func registerSTS(r *Registry, c *sts.Client) {
	r.Register(FamilySTS, "GetCallerIdentity", SDKCall(FamilySTS, c.GetCallerIdentity))
	r.SetVersion(FamilySTS, STSAPIVersion)
}

// registerLambda регистрирует Lambda. Code.ZipFile обычно приходит
// из бинарной подстановки: <fn.zip> или <handler.py|lib>.
func registerLambda(r *Registry, c *lambda.Client) {
	r.Register(FamilyLambda, "CreateFunction", SDKCall(FamilyLambda, c.CreateFunction))
	r.Register(FamilyLambda, "UpdateFunctionCode", SDKCall(FamilyLambda, c.UpdateFunctionCode))
	r.Register(FamilyLambda, "UpdateFunctionConfiguration", SDKCall(FamilyLambda, c.UpdateFunctionConfiguration))
	r.Register(FamilyLambda, "GetFunction", SDKCall(FamilyLambda, c.GetFunction))
	r.Register(FamilyLambda, "DeleteFunction", SDKCall(FamilyLambda, c.DeleteFunction))
	r.Register(FamilyLambda, "PublishVersion", SDKCall(FamilyLambda, c.PublishVersion))
	r.Register(FamilyLambda, "ListVersionsByFunction", SDKCall(FamilyLambda, c.ListVersionsByFunction))
	r.Register(FamilyLambda, "Invoke", invokeFunction(c))
	r.SetVersion(FamilyLambda, LambdaAPIVersion)
}

// invokeFunction — Invoke с Payload из строки, объекта или []byte.
// Ответ функции возвращается в Payload строкой.
func invokeFunction(c *lambda.Client) Func {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		var in lambda.InvokeInput
		if err := Decode(without(params, "Payload"), &in); err != nil {
			return nil, invalidParams(FamilyLambda, "%v", err)
		}

		payload, ok, err := Bytes(params, "Payload")
		if err != nil {
			return nil, invalidParams(FamilyLambda, "%v", err)
		}
		if ok {
			in.Payload = payload
		}

		out, err := c.Invoke(ctx, &in)
		if err != nil {
			return nil, sdkError(FamilyLambda, err)
		}
		data := out.Payload
		out.Payload = nil

		result, err := Encode(out)
		if err != nil {
			return nil, err
		}
		result["Payload"] = string(data)
		return result, nil
	}
}

// putObject — PutObject с телом из строки или бинарной подстановки.
func putObject(c *s3.Client) Func {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		var in s3.PutObjectInput
		if err := Decode(without(params, "Body"), &in); err != nil {
			return nil, invalidParams(FamilyS3, "%v", err)
		}

		body, ok, err := Bytes(params, "Body")
		if err != nil {
			return nil, invalidParams(FamilyS3, "%v", err)
		}
		if ok {
			in.Body = bytes.NewReader(body)
			if in.ContentLength == nil {
				in.ContentLength = aws.Int64(int64(len(body)))
			}
		}

		out, err := c.PutObject(ctx, &in)
		if err != nil {
			return nil, sdkError(FamilyS3, err)
		}
		return Encode(out)
	}
}

// getObject — GetObject с телом объекта в свойстве Body (строкой).
func getObject(c *s3.Client) Func {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		var in s3.GetObjectInput
		if err := Decode(params, &in); err != nil {
			return nil, invalidParams(FamilyS3, "%v", err)
		}

		out, err := c.GetObject(ctx, &in)
		if err != nil {
			return nil, sdkError(FamilyS3, err)
		}
		body := out.Body
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read object body: %w", err)
		}
		out.Body = nil

		result, err := Encode(out)
		if err != nil {
			return nil, err
		}
		result["Body"] = string(data)
		return result, nil
	}
}
