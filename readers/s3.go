//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of LakeETL.
//
// LakeETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LakeETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LakeETL. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/lakeetl/core"
)

// S3ReaderError provides structured error information for S3 reader operations.
type S3ReaderError struct {
	Op  string // Operation that failed (e.g., "list_objects", "get_object", "read")
	Err error  // Underlying error
}

func (e *S3ReaderError) Error() string {
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3ReaderStats holds statistics about the S3 reader's progress.
type S3ReaderStats struct {
	ObjectsListed  int64         // Total objects discovered
	ObjectsRead    int64         // Total objects successfully opened
	RecordsRead    int64         // Total records read across all objects
	ReadDuration   time.Duration // Total time spent reading
	LastReadTime   time.Time     // Time of last read operation
	ObjectErrors   int64         // Number of objects that failed to open
	CurrentObject  string        // Currently processing object
	ProcessedFiles []string      // List of successfully processed objects
}

// S3ReaderOptions configures the S3 reader behavior.
type S3ReaderOptions struct {
	Bucket         string          // S3 bucket name
	Prefix         string          // Key prefix filter
	Suffix         string          // Key suffix filter (e.g., ".json")
	MaxKeys        int32           // Page size for object listing
	Region         string          // AWS region
	Profile        string          // AWS profile to use
	Credentials    aws.Credentials // Explicit credentials
	EndpointURL    string          // Custom S3 endpoint (for S3-compatible services)
	ForcePathStyle bool            // Use path-style addressing
	Client         *s3.Client      // Pre-built client; skips config loading when set
}

// ReaderOptionS3 represents a configuration function for S3Reader.
type ReaderOptionS3 func(*S3ReaderOptions)

func WithS3Bucket(bucket string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Bucket = bucket
	}
}

func WithS3Prefix(prefix string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Prefix = prefix
	}
}

func WithS3Suffix(suffix string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Suffix = suffix
	}
}

func WithS3Region(region string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Region = region
	}
}

func WithS3Profile(profile string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Profile = profile
	}
}

func WithS3Credentials(creds aws.Credentials) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Credentials = creds
	}
}

func WithS3Endpoint(endpoint string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.EndpointURL = endpoint
	}
}

func WithS3PathStyle(pathStyle bool) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.ForcePathStyle = pathStyle
	}
}

func WithS3MaxKeys(maxKeys int32) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.MaxKeys = maxKeys
	}
}

// WithS3Client injects a pre-built client so a session can bootstrap AWS
// configuration once and share it across readers and writers.
func WithS3Client(client *s3.Client) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) {
		opts.Client = client
	}
}

// S3Object identifies a discovered S3 object.
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// S3Reader implements core.DataSource for reading line-delimited JSON
// objects from Amazon S3. Objects under the configured prefix are listed
// once at construction, sorted by key, and streamed record by record.
type S3Reader struct {
	client        *s3.Client
	objects       []S3Object
	currentIndex  int
	currentReader core.DataSource
	stats         S3ReaderStats
	opts          S3ReaderOptions
	mu            sync.RWMutex
}

// NewS3Reader creates a new S3 reader with the specified options.
func NewS3Reader(ctx context.Context, options ...ReaderOptionS3) (*S3Reader, error) {
	opts := S3ReaderOptions{
		MaxKeys: 1000,
	}

	for _, option := range options {
		option(&opts)
	}

	if opts.Bucket == "" {
		return nil, &S3ReaderError{Op: "validate_options", Err: fmt.Errorf("bucket is required")}
	}

	client := opts.Client
	if client == nil {
		cfg, err := createAWSConfig(ctx, opts)
		if err != nil {
			return nil, &S3ReaderError{Op: "create_aws_config", Err: err}
		}
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.EndpointURL != "" {
				o.BaseEndpoint = aws.String(opts.EndpointURL)
			}
			o.UsePathStyle = opts.ForcePathStyle
		})
	}

	reader := &S3Reader{
		client: client,
		opts:   opts,
		stats:  S3ReaderStats{ProcessedFiles: make([]string, 0)},
	}

	if err := reader.listObjects(ctx); err != nil {
		return nil, &S3ReaderError{Op: "list_objects", Err: err}
	}

	return reader, nil
}

// Read implements the core.DataSource interface.
func (s *S3Reader) Read(ctx context.Context) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.stats.ReadDuration += time.Since(start)
		s.stats.LastReadTime = time.Now()
	}()

	select {
	case <-ctx.Done():
		return nil, &S3ReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	for {
		if s.currentReader == nil {
			if s.currentIndex >= len(s.objects) {
				return nil, io.EOF
			}

			// An unreadable object means incomplete input, so the
			// failure surfaces here instead of skipping the object.
			if err := s.openNextObject(ctx); err != nil {
				s.stats.ObjectErrors++
				return nil, &S3ReaderError{Op: "open_object", Err: err}
			}
		}

		record, err := s.currentReader.Read(ctx)
		if err == io.EOF {
			s.closeCurrentReader()
			continue
		}
		if err != nil {
			return nil, &S3ReaderError{Op: "read_record", Err: err}
		}

		s.stats.RecordsRead++
		return record, nil
	}
}

// Close implements the core.DataSource interface.
func (s *S3Reader) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeCurrentReader()
}

// Stats returns S3 reader progress statistics.
func (s *S3Reader) Stats() S3ReaderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Objects returns the list of S3 objects that will be or have been processed.
func (s *S3Reader) Objects() []S3Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects
}

// createAWSConfig creates AWS configuration from options.
func createAWSConfig(ctx context.Context, opts S3ReaderOptions) (aws.Config, error) {
	configOpts := []func(*config.LoadOptions) error{}

	if opts.Region != "" {
		configOpts = append(configOpts, config.WithRegion(opts.Region))
	}

	if opts.Profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override with explicit credentials if provided
	if opts.Credentials.AccessKeyID != "" {
		cfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				opts.Credentials.AccessKeyID,
				opts.Credentials.SecretAccessKey,
				opts.Credentials.SessionToken,
			),
		)
	}

	return cfg, nil
}

// listObjects retrieves and filters objects from S3.
func (s *S3Reader) listObjects(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.opts.Bucket),
		MaxKeys: &s.opts.MaxKeys,
	}

	if s.opts.Prefix != "" {
		input.Prefix = aws.String(s.opts.Prefix)
	}

	var allObjects []S3Object

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if !s.shouldIncludeObject(*obj.Key) {
				continue
			}
			allObjects = append(allObjects, S3Object{
				Key:          *obj.Key,
				Size:         *obj.Size,
				LastModified: *obj.LastModified,
				ETag:         strings.Trim(*obj.ETag, "\""),
			})
		}
	}

	sort.Slice(allObjects, func(i, j int) bool {
		return allObjects[i].Key < allObjects[j].Key
	})

	s.objects = allObjects
	s.stats.ObjectsListed = int64(len(allObjects))

	return nil
}

// shouldIncludeObject determines if an object should be processed.
func (s *S3Reader) shouldIncludeObject(key string) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	if s.opts.Suffix != "" && !strings.HasSuffix(key, s.opts.Suffix) {
		return false
	}
	return true
}

// openNextObject opens the next S3 object for reading.
func (s *S3Reader) openNextObject(ctx context.Context) error {
	if s.currentIndex >= len(s.objects) {
		return io.EOF
	}

	obj := s.objects[s.currentIndex]
	s.stats.CurrentObject = obj.Key

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(obj.Key),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", obj.Key, err)
	}

	s.currentReader = NewJSONReader(result.Body)
	s.stats.ObjectsRead++
	s.stats.ProcessedFiles = append(s.stats.ProcessedFiles, obj.Key)

	return nil
}

// closeCurrentReader closes the current object reader.
func (s *S3Reader) closeCurrentReader() error {
	if s.currentReader != nil {
		err := s.currentReader.Close()
		s.currentReader = nil
		s.currentIndex++
		return err
	}
	return nil
}
