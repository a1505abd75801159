package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// s3Transport serves s3://bucket/key origins through GetObject and
// HeadObject. Ranged reads follow the same semantics as HTTP: the SDK's
// InvalidRange error surfaces as status 416 and a reply without
// Content-Range is treated as a full (200) body.
type s3Transport struct {
	client *s3.Client
}

func (t *s3Transport) do(ctx context.Context, req request) (*response, error) {
	bucket := req.url.Host
	key := strings.TrimPrefix(req.url.Path, "/")
	if key == "" {
		return nil, fmt.Errorf("s3 url %s has no object key", req.url)
	}

	withPriority := func(o *s3.Options) {
		o.APIOptions = append(o.APIOptions,
			smithyhttp.AddHeaderValue("Priority", fmt.Sprintf("u=%d", req.priority.Urgency())))
	}

	switch req.method {
	case http.MethodHead:
		out, err := t.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, withPriority)
		if err != nil {
			return statusFromS3(err)
		}
		return &response{
			status:        http.StatusOK,
			contentLength: contentLength(out.ContentLength),
			contentType:   aws.ToString(out.ContentType),
			etag:          aws.ToString(out.ETag),
			lastModified:  aws.ToTime(out.LastModified),
		}, nil

	case http.MethodGet:
		in := &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}
		if req.rangeHdr != "" {
			in.Range = aws.String(req.rangeHdr)
		}
		out, err := t.client.GetObject(ctx, in, withPriority)
		if err != nil {
			return statusFromS3(err)
		}
		status := http.StatusOK
		if out.ContentRange != nil {
			status = http.StatusPartialContent
		}
		return &response{
			status:        status,
			body:          out.Body,
			contentLength: contentLength(out.ContentLength),
			contentRange:  aws.ToString(out.ContentRange),
			contentType:   aws.ToString(out.ContentType),
			etag:          aws.ToString(out.ETag),
			lastModified:  aws.ToTime(out.LastModified),
		}, nil
	}

	return nil, fmt.Errorf("unsupported method %s", req.method)
}

// statusFromS3 turns an SDK error carrying an HTTP response into a plain
// status response. Errors without one (DNS, connection refused, ...) are
// returned as transport failures.
func statusFromS3(err error) (*response, error) {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return &response{status: re.HTTPStatusCode(), contentLength: -1}, nil
	}
	return nil, err
}

func contentLength(v *int64) int64 {
	if v == nil {
		return -1
	}
	return *v
}
