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
	"log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/aaronlmathis/lakeetl"
	"github.com/aaronlmathis/lakeetl/core"
	"github.com/aaronlmathis/lakeetl/dedupe"
	"github.com/aaronlmathis/lakeetl/readers"
	"github.com/aaronlmathis/lakeetl/transform"
)

// ProcessSongData loads the song metadata files and writes the songs
// and artists dimension tables. The loaded records are returned so the
// songplays stage can join activity logs against them without a second
// scan of the input.
func (s *Session) ProcessSongData(ctx context.Context) ([]core.Record, error) {
	log.Println("reading song data")

	source, err := s.openSource(ctx, "song_data")
	if err != nil {
		return nil, errors.Wrap(err, "opening song data")
	}

	sink := &collector{}
	pipeline, err := lakeetl.NewPipeline().
		From(source).
		To(sink).
		Build()
	if err != nil {
		return nil, err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return nil, errors.Wrap(err, "loading song data")
	}
	log.Printf("loaded %d song records", len(sink.records))

	target, err := s.newTarget()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		songs := dedupe.FirstBy(sink.records, "song_id")
		log.Printf("writing %d songs", len(songs))
		err := writeTable(gctx, target, songsTable,
			readers.NewSliceReader(songs),
			transform.ToInt("year"),
		)
		return errors.Wrap(err, "writing songs table")
	})

	g.Go(func() error {
		artists := dedupe.FirstBy(sink.records, "artist_id")
		log.Printf("writing %d artists", len(artists))
		err := writeTable(gctx, target, artistsTable,
			readers.NewSliceReader(artists),
			transform.Rename(map[string]string{
				"artist_name":      "name",
				"artist_location":  "location",
				"artist_latitude":  "latitude",
				"artist_longitude": "longitude",
			}),
		)
		return errors.Wrap(err, "writing artists table")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sink.records, nil
}
