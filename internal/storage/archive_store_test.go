package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumesync/internal/config"
)

func TestNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"wrapped not found", fmt.Errorf("remove: %w", minio.ErrorResponse{Code: "NotFound"}), true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, false},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, notFound(tc.err))
		})
	}
}

func TestNewArchiveStoreRejectsBadEndpoint(t *testing.T) {
	_, err := NewArchiveStore(config.MinIOConfig{Endpoint: "http://has-a-scheme:9000", Bucket: "archives"})
	require.ErrorContains(t, err, "init minio client")
}
