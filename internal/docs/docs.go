// Package docs fetches job posting documents from object storage and
// extracts their text.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
)

// ObjectGetter is the S3 dependency, satisfied by *s3.Client.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher downloads documents referenced by s3:// URIs.
type Fetcher struct {
	client ObjectGetter
}

func NewFetcher(client ObjectGetter) *Fetcher {
	return &Fetcher{client: client}
}

// ParseURI splits an s3://bucket/key URI.
func ParseURI(uri string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 URI: %q", uri)
	}
	return bucket, key, nil
}

// Fetch downloads the object behind an s3:// URI.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object body: %w", err)
	}
	return data, nil
}

// ExtractText returns the textual content of a document. PDF files are
// detected by their magic bytes; anything else is treated as UTF-8 text
// with invalid sequences dropped.
func ExtractText(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return extractPDFText(data)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
