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

package lakeetl

import (
	"context"
	"fmt"
	"io"
)

// Package lakeetl provides the composable ETL pipeline used by the data
// lake builder.
//
// Core Concepts:
//   - DataSource: Interface for reading records from a data source.
//   - DataSink: Interface for writing records to a data sink.
//   - Transformer: Interface for transforming records (projection, renaming, derivation).
//   - Filter: Interface for filtering records based on custom logic.
//   - Pipeline: Composable, chainable ETL pipeline for record-by-record processing.
//   - ErrorStrategy: Configurable error handling (fail fast, skip, collect, custom handler).
//
// Example usage:
//
//	pipeline, err := lakeetl.NewPipeline().
//	    From(jsonReader).
//	    Where(isSongPlay).
//	    Transform(deriveStartTime).
//	    To(parquetSink).
//	    Build()
//	if err != nil { log.Fatal(err) }
//	if err := pipeline.Execute(context.Background()); err != nil { log.Fatal(err) }
//
// All operations are streaming and memory-efficient.

// PipelineBuilder provides a fluent API for constructing transformation pipelines.
// Use NewPipeline() to create a new builder, then chain From, Transform, Filter,
// To, and configuration methods.
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipeline creates a new PipelineBuilder for constructing an ETL pipeline.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			transformers: make([]Transformer, 0),
			filters:      make([]Filter, 0),
			strategy:     FailFast,
		},
	}
}

// From sets the DataSource for the pipeline.
func (pb *PipelineBuilder) From(source DataSource) *PipelineBuilder {
	pb.pipeline.source = source
	return pb
}

// Transform adds a Transformer to the pipeline.
func (pb *PipelineBuilder) Transform(transformer Transformer) *PipelineBuilder {
	pb.pipeline.transformers = append(pb.pipeline.transformers, transformer)
	return pb
}

// Filter adds a Filter to the pipeline.
func (pb *PipelineBuilder) Filter(filter Filter) *PipelineBuilder {
	pb.pipeline.filters = append(pb.pipeline.filters, filter)
	return pb
}

// Map adds a mapping transformation to the pipeline using a function.
func (pb *PipelineBuilder) Map(fn func(ctx context.Context, record Record) (Record, error)) *PipelineBuilder {
	return pb.Transform(TransformFunc(fn))
}

// Where adds a filtering condition to the pipeline using a function.
func (pb *PipelineBuilder) Where(fn func(ctx context.Context, record Record) (bool, error)) *PipelineBuilder {
	return pb.Filter(FilterFunc(fn))
}

// To sets the DataSink for the pipeline.
func (pb *PipelineBuilder) To(sink DataSink) *PipelineBuilder {
	pb.pipeline.sink = sink
	return pb
}

// WithErrorStrategy sets the error handling strategy for the pipeline.
func (pb *PipelineBuilder) WithErrorStrategy(strategy ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom error handler for the pipeline.
func (pb *PipelineBuilder) WithErrorHandler(handler ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// Build validates and constructs the Pipeline from the builder.
// Returns the constructed pipeline, or an error if required components are missing.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline requires a data source")
	}
	if pb.pipeline.sink == nil {
		return nil, fmt.Errorf("pipeline requires a data sink")
	}
	return pb.pipeline, nil
}

// Pipeline represents a data processing pipeline for streaming ETL operations.
//
// Use Execute to process all records from the DataSource through
// transformations and filters, writing to the DataSink.
type Pipeline struct {
	transformers []Transformer
	filters      []Filter
	source       DataSource
	sink         DataSink
	strategy     ErrorStrategy
	errorHandler ErrorHandler
}

// Execute runs the pipeline, processing all records from source to sink.
//
// The pipeline reads records from the DataSource, applies filters and
// transformations, and writes to the DataSink. Both endpoints are closed
// when processing ends, whatever the outcome. Sinks buffer, so the final
// flush and close are where buffered data actually reaches storage; their
// errors fail the run like any other write error. Error handling is
// governed by the configured ErrorStrategy and ErrorHandler.
func (p *Pipeline) Execute(ctx context.Context) (err error) {
	defer func() {
		if p.source != nil {
			p.source.Close()
		}
		if p.sink != nil {
			flushErr := p.sink.Flush()
			closeErr := p.sink.Close()
			if err == nil {
				if flushErr != nil {
					err = flushErr
				} else {
					err = closeErr
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := p.source.Read(ctx)

		if err == io.EOF {
			break
		}
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		// Skip empty records early
		if len(record) == 0 {
			continue
		}

		shouldInclude, err := p.applyFilters(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !shouldInclude {
			continue
		}

		transformedRecord, err := p.applyTransformations(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if len(transformedRecord) == 0 {
			continue
		}

		if err := p.sink.Write(ctx, transformedRecord); err != nil {
			if err := p.handleError(ctx, transformedRecord, err); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyFilters applies all configured filters to a record.
func (p *Pipeline) applyFilters(ctx context.Context, record Record) (bool, error) {
	for _, filter := range p.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

// applyTransformations applies all configured transformers to a record in sequence.
func (p *Pipeline) applyTransformations(ctx context.Context, record Record) (Record, error) {
	current := record
	for _, transformer := range p.transformers {
		transformed, err := transformer.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		current = transformed
	}
	return current, nil
}

// handleError handles errors according to the pipeline's error strategy and handler.
func (p *Pipeline) handleError(ctx context.Context, record Record, err error) error {
	switch p.strategy {
	case FailFast:
		return err
	case SkipErrors, CollectErrors:
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
