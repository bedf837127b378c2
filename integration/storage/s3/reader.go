package s3

import "bytes"

// newReader wraps data for the AWS SDK's io.Reader-shaped Body field.
func newReader(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}
