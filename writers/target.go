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

package writers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Target abstracts the destination of written file sets. Keys use forward
// slashes relative to the target root; the target decides the physical
// layout. Separating "what rows" from "where written" keeps the
// partitioned writer testable against a local directory.
type Target interface {
	// Create opens a writer for the object at key, creating any
	// intermediate directories or key prefixes.
	Create(ctx context.Context, key string) (io.WriteCloser, error)
	// RemoveAll deletes every object under prefix. Removing a prefix that
	// does not exist is not an error.
	RemoveAll(ctx context.Context, prefix string) error
}

// LocalTarget writes objects under a root directory on the local filesystem.
type LocalTarget struct {
	Root string
}

// NewLocalTarget creates a Target rooted at dir.
func NewLocalTarget(dir string) *LocalTarget {
	return &LocalTarget{Root: dir}
}

// Create implements the Target interface.
func (t *LocalTarget) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	full := filepath.Join(t.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

// RemoveAll implements the Target interface.
func (t *LocalTarget) RemoveAll(ctx context.Context, prefix string) error {
	return os.RemoveAll(filepath.Join(t.Root, filepath.FromSlash(prefix)))
}

// S3Target writes objects into an S3 bucket under a key prefix. Each
// created object is buffered in memory and uploaded on Close via the
// transfer manager.
type S3Target struct {
	client   *s3.Client
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Target creates a Target for s3://bucket/prefix using the given client.
func NewS3Target(client *s3.Client, bucket, prefix string) *S3Target {
	return &S3Target{
		client:   client,
		uploader: s3manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// Create implements the Target interface.
func (t *S3Target) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	return &s3WriteCloser{
		ctx:      ctx,
		buf:      &bytes.Buffer{},
		uploader: t.uploader,
		bucket:   t.bucket,
		key:      t.resolve(key),
	}, nil
}

// RemoveAll implements the Target interface. Objects under the prefix are
// listed page by page and deleted in batches.
func (t *S3Target) RemoveAll(ctx context.Context, prefix string) error {
	full := t.resolve(prefix)
	if full != "" && full[len(full)-1] != '/' {
		full += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(t.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(t.bucket),
		Prefix: aws.String(full),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %w", full, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}

		_, err = t.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(t.bucket),
			Delete: &s3types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects under %s: %w", full, err)
		}
	}

	return nil
}

func (t *S3Target) resolve(key string) string {
	if t.prefix == "" {
		return key
	}
	return path.Join(t.prefix, key)
}

// s3WriteCloser buffers writes in memory and uploads the object when
// closed. The upload runs once; later Close calls return the first result.
type s3WriteCloser struct {
	ctx      context.Context
	buf      *bytes.Buffer
	uploader *s3manager.Uploader
	bucket   string
	key      string
	closed   bool
	closeErr error
}

func (s *s3WriteCloser) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *s3WriteCloser) Close() error {
	if s.closed {
		return s.closeErr
	}
	s.closed = true

	_, s.closeErr = s.uploader.Upload(s.ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Body:   bytes.NewReader(s.buf.Bytes()),
	})
	return s.closeErr
}
