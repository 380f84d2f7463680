package oauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrBlobNotFound = errors.New("state blob not found")
	// ErrBlobNewer means another host rotated the refresh token after the
	// state being saved was read.
	ErrBlobNewer = errors.New("state blob is newer")
)

const (
	defaultBlobPrefix = "gotado"
	stateObjectName   = "state.json"

	metaUpdatedAt = "Updated-At"
	metaHomeID    = "Home-Id"
	metaSchema    = "Schema-Version"
)

// BlobStore mirrors the session state to object storage so several hosts
// can share one tado login.
type BlobStore interface {
	Load(ctx context.Context) (State, error)
	// Save uploads state unless the mirror changed after base. A zero base
	// overwrites unconditionally.
	Save(ctx context.Context, state State, base time.Time) error
}

// BlobConfig locates the S3 compatible bucket. Keys are read from files so
// they never appear in the config itself.
type BlobConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	Region        string `mapstructure:"region"`
	AccessKeyFile string `mapstructure:"access_key_file"`
	SecretKeyFile string `mapstructure:"secret_key_file"`
}

// Enabled reports whether any blob setting was given.
func (c BlobConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" || strings.TrimSpace(c.Bucket) != ""
}

// objectKey is where the state lives inside the bucket.
func (c BlobConfig) objectKey() string {
	prefix := strings.Trim(strings.TrimSpace(c.Prefix), "/")
	if prefix == "" {
		prefix = defaultBlobPrefix
	}
	return path.Join(prefix, stateObjectName)
}

// objects is the slice of the S3 API the store needs.
type objects interface {
	stat(ctx context.Context, key string) (map[string]string, error)
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, data []byte, meta map[string]string) error
}

// S3Store keeps the session state as a single JSON object. The state's
// updated_at and home id ride along as object metadata so a save can tell
// whether another host wrote in between without downloading the object.
type S3Store struct {
	objects objects
	key     string
}

// NewS3Store connects to the bucket described by cfg.
func NewS3Store(cfg BlobConfig) (*S3Store, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("blob bucket is required")
	}
	host, secure, err := parseEndpoint(strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, err
	}
	accessKey, err := readKeyFile("access", cfg.AccessKeyFile)
	if err != nil {
		return nil, err
	}
	secretKey, err := readKeyFile("secret", cfg.SecretKeyFile)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("blob client for %s: %w", host, err)
	}
	return newS3Store(&minioObjects{client: client, bucket: bucket}, cfg), nil
}

func newS3Store(objects objects, cfg BlobConfig) *S3Store {
	return &S3Store{objects: objects, key: cfg.objectKey()}
}

// Load returns the mirrored state. ErrBlobNotFound means nothing was
// mirrored yet.
func (s *S3Store) Load(ctx context.Context) (State, error) {
	data, err := s.objects.get(ctx, s.key)
	if err != nil {
		return State{}, blobError(err)
	}
	state, err := DecodeState(data)
	if err != nil {
		return State{}, fmt.Errorf("blob %s: %w", s.key, err)
	}
	return state, nil
}

// Save uploads state. When base is set and the object was updated after it,
// ErrBlobNewer is returned and the object is untouched.
func (s *S3Store) Save(ctx context.Context, state State, base time.Time) error {
	if !base.IsZero() {
		if err := s.checkUnchanged(ctx, base); err != nil {
			return err
		}
	}
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	return blobError(s.objects.put(ctx, s.key, data, map[string]string{
		metaUpdatedAt: state.UpdatedAt.UTC().Format(time.RFC3339Nano),
		metaHomeID:    strconv.Itoa(state.HomeID),
		metaSchema:    strconv.Itoa(SchemaVersion),
	}))
}

func (s *S3Store) checkUnchanged(ctx context.Context, base time.Time) error {
	meta, err := s.objects.stat(ctx, s.key)
	switch err = blobError(err); {
	case errors.Is(err, ErrBlobNotFound):
	case err != nil:
		return err
	default:
		if remote, ok := metaTime(meta, metaUpdatedAt); ok && remote.After(base) {
			return fmt.Errorf("%w: %s was updated at %s", ErrBlobNewer, s.key, remote.Format(time.RFC3339))
		}
	}
	return nil
}

// metaTime looks name up case-insensitively; S3 servers differ in how they
// canonicalize metadata keys.
func metaTime(meta map[string]string, name string) (time.Time, bool) {
	for key, value := range meta {
		if !strings.EqualFold(key, name) {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, value)
		return at, err == nil
	}
	return time.Time{}, false
}

func blobError(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrBlobNotFound
	}
	return fmt.Errorf("blob: %w", err)
}

// parseEndpoint accepts a bare host (TLS assumed) or an http(s) URL.
func parseEndpoint(raw string) (host string, secure bool, err error) {
	if raw == "" {
		return "", false, fmt.Errorf("blob endpoint is required")
	}
	if !strings.Contains(raw, "://") {
		return raw, true, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("blob endpoint: %w", err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false, fmt.Errorf("blob endpoint %q: want host or http(s) URL", raw)
	}
	return u.Host, u.Scheme == "https", nil
}

func readKeyFile(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("blob %s key file is required", kind)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("blob %s key: %w", kind, err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("blob %s key file %s is empty", kind, name)
	}
	return key, nil
}

type minioObjects struct {
	client *minio.Client
	bucket string
}

func (m *minioObjects) stat(ctx context.Context, key string) (map[string]string, error) {
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, err
	}
	return info.UserMetadata, nil
}

func (m *minioObjects) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (m *minioObjects) put(ctx context.Context, key string, data []byte, meta map[string]string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: meta,
	})
	return err
}
