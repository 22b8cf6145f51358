// Package s3 implements C2, the blob storage adapter. Every object is
// envelope-encrypted before it leaves the process: a fresh 256-bit data
// key is generated per object, the object is sealed under that key with
// AES-256-GCM, and the data key itself is sealed under the deployment's
// master key and stored alongside the ciphertext (spec.md §4.2: "objects
// never reach the bucket in plaintext; a compromised bucket reveals
// nothing without the master key"). This keeps port.StorageAdapter's
// plain Upload/Download shape: encryption is entirely transparent to
// callers, which still exchange plaintext bytes with this adapter.
package s3

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// envelopeMagic tags the header of every object this adapter writes, so a
// future adapter version can detect and reject objects sealed under an
// incompatible scheme rather than silently mis-decrypting them.
var envelopeMagic = [4]byte{'D', 'B', 'E', '1'}

const (
	keySize   = 32 // AES-256
	nonceSize = 12 // GCM standard nonce length
)

// Config holds the S3 adapter configuration.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string // For S3-compatible services (MinIO, LocalStack)
	EnvelopeMasterKey [32]byte
}

// Adapter implements port.StorageAdapter for AWS S3 and compatible
// services, envelope-encrypting every object under masterKey.
type Adapter struct {
	client    *s3.Client
	bucket    string
	masterKey [32]byte
}

// New creates a new S3 storage adapter.
func New(cfg *Config) (port.StorageAdapter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if cfg.EnvelopeMasterKey == ([32]byte{}) {
		return nil, errors.New("s3: envelope master key is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: loading aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, LocalStack)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &Adapter{
		client:    client,
		bucket:    cfg.Bucket,
		masterKey: cfg.EnvelopeMasterKey,
	}, nil
}

// Upload envelope-encrypts data and stores the sealed object under key.
func (a *Adapter) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	sealed, err := a.seal(data)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(sealed),
		ContentType: aws.String(contentType),
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3: uploading object: %w", err)
	}

	return nil
}

// Download retrieves the sealed object by key and unseals it.
func (a *Adapter) Download(ctx context.Context, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}

	result, err := a.client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("s3: getting object: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: reading object body: %w", err)
	}

	data, err := a.unseal(sealed)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}
	return data, nil
}

// GetURL returns a presigned URL for accessing the sealed object directly.
// Callers that need plaintext must go through Download; this URL only ever
// exposes ciphertext, matching spec.md §4.2's no-plaintext-in-the-bucket
// guarantee even when the presigned link leaks.
func (a *Adapter) GetURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(a.client)

	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}

	result, err := presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("s3: presigning url: %w", err)
	}

	return result.URL, nil
}

// Delete removes an object by key.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}

	_, err := a.client.DeleteObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3: deleting object: %w", err)
	}

	return nil
}

// Exists checks if an object exists at the given key.
func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}

	_, err := a.client.HeadObject(ctx, input)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3: checking object existence: %w", err)
	}

	return true, nil
}

// seal generates a fresh per-object data key, AES-256-GCM-encrypts data
// under it, wraps the data key under the master key, and concatenates
// magic || wrapNonce || wrappedKeyLen || wrappedKey || dataNonce || ciphertext.
func (a *Adapter) seal(data []byte) ([]byte, error) {
	dataKey := make([]byte, keySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, fmt.Errorf("generate data key: %w", err)
	}

	masterGCM, err := newGCM(a.masterKey[:])
	if err != nil {
		return nil, err
	}
	wrapNonce := make([]byte, nonceSize)
	if _, err := rand.Read(wrapNonce); err != nil {
		return nil, fmt.Errorf("generate wrap nonce: %w", err)
	}
	wrappedKey := masterGCM.Seal(nil, wrapNonce, dataKey, nil)

	dataGCM, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	dataNonce := make([]byte, nonceSize)
	if _, err := rand.Read(dataNonce); err != nil {
		return nil, fmt.Errorf("generate data nonce: %w", err)
	}
	ciphertext := dataGCM.Seal(nil, dataNonce, data, nil)

	var out bytes.Buffer
	out.Write(envelopeMagic[:])
	out.Write(wrapNonce)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(wrappedKey)))
	out.Write(lenBuf[:])
	out.Write(wrappedKey)
	out.Write(dataNonce)
	out.Write(ciphertext)
	return out.Bytes(), nil
}

// unseal reverses seal, unwrapping the per-object data key under the
// master key before decrypting the payload.
func (a *Adapter) unseal(sealed []byte) ([]byte, error) {
	header := len(envelopeMagic) + nonceSize + 2
	if len(sealed) < header {
		return nil, errors.New("sealed object too short")
	}
	if !bytes.Equal(sealed[:len(envelopeMagic)], envelopeMagic[:]) {
		return nil, errors.New("sealed object has an unrecognized envelope version")
	}
	offset := len(envelopeMagic)

	wrapNonce := sealed[offset : offset+nonceSize]
	offset += nonceSize

	wrappedKeyLen := int(binary.BigEndian.Uint16(sealed[offset : offset+2]))
	offset += 2
	if len(sealed) < offset+wrappedKeyLen+nonceSize {
		return nil, errors.New("sealed object truncated")
	}
	wrappedKey := sealed[offset : offset+wrappedKeyLen]
	offset += wrappedKeyLen

	dataNonce := sealed[offset : offset+nonceSize]
	offset += nonceSize
	ciphertext := sealed[offset:]

	masterGCM, err := newGCM(a.masterKey[:])
	if err != nil {
		return nil, err
	}
	dataKey, err := masterGCM.Open(nil, wrapNonce, wrappedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("unwrap data key: %w", err)
	}

	dataGCM, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	plaintext, err := dataGCM.Open(nil, dataNonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt object: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("build cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

var _ port.StorageAdapter = (*Adapter)(nil)
