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

package lake

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/aaronlmathis/lakeetl"
	"github.com/aaronlmathis/lakeetl/core"
	"github.com/aaronlmathis/lakeetl/readers"
	"github.com/aaronlmathis/lakeetl/transform"
	"github.com/aaronlmathis/lakeetl/writers"
)

// Session is the engine handle for one pipeline run. It is created once
// at startup, bootstraps AWS configuration a single time when either
// side of the pipeline lives on S3, and is passed explicitly to every
// stage rather than held as global state.
type Session struct {
	cfg      Config
	s3client *s3.Client
}

// NewSession creates a session from the loaded configuration.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	sess := &Session{cfg: cfg}

	if isS3Path(cfg.InputData) || isS3Path(cfg.OutputData) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, errors.Wrap(err, "loading aws configuration")
		}
		if cfg.AccessKeyID != "" {
			awsCfg.Credentials = aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			)
		}
		sess.s3client = s3.NewFromConfig(awsCfg)
	}

	return sess, nil
}

// Run executes the full pipeline: song metadata first, then activity
// logs, which join against the song metadata. Any stage error aborts
// the run.
func (s *Session) Run(ctx context.Context) error {
	songs, err := s.ProcessSongData(ctx)
	if err != nil {
		return errors.Wrap(err, "processing song data")
	}
	if err := s.ProcessLogData(ctx, songs); err != nil {
		return errors.Wrap(err, "processing log data")
	}
	return nil
}

// openSource opens a streaming JSON source for a subdirectory of the
// input location.
func (s *Session) openSource(ctx context.Context, dir string) (core.DataSource, error) {
	full := joinPath(s.cfg.InputData, dir)
	if bucket, key, ok := parseS3Path(full); ok {
		if s.s3client == nil {
			return nil, errors.New("s3 input requires aws configuration")
		}
		return readers.NewS3Reader(ctx,
			readers.WithS3Client(s.s3client),
			readers.WithS3Bucket(bucket),
			readers.WithS3Prefix(key+"/"),
			readers.WithS3Suffix(".json"),
		)
	}
	return readers.NewFileReader(full, ".json")
}

// newTarget creates the write destination for the output location.
func (s *Session) newTarget() (writers.Target, error) {
	if bucket, key, ok := parseS3Path(s.cfg.OutputData); ok {
		if s.s3client == nil {
			return nil, errors.New("s3 output requires aws configuration")
		}
		return writers.NewS3Target(s.s3client, bucket, key), nil
	}
	return writers.NewLocalTarget(s.cfg.OutputData), nil
}

// writeTable streams rows through the given transformers, projects the
// table's columns, and writes the partitioned Parquet file set.
func writeTable(ctx context.Context, target writers.Target, spec tableSpec, source core.DataSource, transforms ...core.Transformer) error {
	sink, err := writers.NewPartitionedWriter(ctx, target, spec.name,
		writers.PartitionBy(spec.partitionBy...),
		writers.WithPartOptions(
			writers.WithSchema(spec.schema),
			writers.WithFieldOrder(spec.fieldNames()),
		),
	)
	if err != nil {
		return err
	}

	builder := lakeetl.NewPipeline().From(source)
	for _, t := range transforms {
		builder = builder.Transform(t)
	}
	builder = builder.Transform(transform.Select(spec.fieldNames()...))

	pipeline, err := builder.To(sink).Build()
	if err != nil {
		return err
	}
	return pipeline.Execute(ctx)
}

// collector buffers pipeline output in memory so a relation can be
// deduplicated or joined before it is written.
type collector struct {
	records []core.Record
}

func (c *collector) Write(ctx context.Context, record core.Record) error {
	c.records = append(c.records, record)
	return nil
}

func (c *collector) Flush() error { return nil }

func (c *collector) Close() error { return nil }

// parseS3Path splits s3://bucket/key URLs. The s3a:// scheme used by
// Hadoop-era paths is accepted as an alias.
func parseS3Path(p string) (bucket, key string, ok bool) {
	trimmed := p
	switch {
	case strings.HasPrefix(p, "s3://"):
		trimmed = strings.TrimPrefix(p, "s3://")
	case strings.HasPrefix(p, "s3a://"):
		trimmed = strings.TrimPrefix(p, "s3a://")
	default:
		return "", "", false
	}

	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = strings.Trim(parts[1], "/")
	}
	return bucket, key, bucket != ""
}

func isS3Path(p string) bool {
	_, _, ok := parseS3Path(p)
	return ok
}

// joinPath appends a subdirectory to either an S3 URL or a local path.
func joinPath(base, sub string) string {
	if isS3Path(base) {
		return strings.TrimSuffix(base, "/") + "/" + sub
	}
	return filepath.Join(base, sub)
}
