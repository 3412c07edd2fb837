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
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/aaronlmathis/lakeetl"
	"github.com/aaronlmathis/lakeetl/core"
	"github.com/aaronlmathis/lakeetl/dedupe"
	"github.com/aaronlmathis/lakeetl/filter"
	"github.com/aaronlmathis/lakeetl/join"
	"github.com/aaronlmathis/lakeetl/readers"
	"github.com/aaronlmathis/lakeetl/transform"
	"github.com/aaronlmathis/lakeetl/writers"
)

// songMatchTolerance bounds the difference between a log event's song
// length and a catalog song's duration when matching plays to songs.
const songMatchTolerance = 0.5

// ProcessLogData loads the activity log files and writes the users and
// time dimension tables and the songplays fact table. Songplays are
// matched against the song metadata records loaded by ProcessSongData.
func (s *Session) ProcessLogData(ctx context.Context, songs []core.Record) error {
	log.Println("reading log data")

	source, err := s.openSource(ctx, "log_data")
	if err != nil {
		return errors.Wrap(err, "opening log data")
	}

	sink := &collector{}
	pipeline, err := lakeetl.NewPipeline().
		From(source).
		Filter(filter.Equals("page", "NextSong")).
		Transform(transform.EpochMillis("ts", "start_time")).
		To(sink).
		Build()
	if err != nil {
		return err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return errors.Wrap(err, "loading log data")
	}
	log.Printf("loaded %d song play events", len(sink.records))

	target, err := s.newTarget()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.writeUsers(gctx, target, sink.records) })
	g.Go(func() error { return s.writeTime(gctx, target, sink.records) })
	g.Go(func() error { return s.writeSongplays(gctx, target, sink.records, songs) })

	return g.Wait()
}

// writeUsers keeps each user's most recent event so the level column
// reflects their current subscription tier.
func (s *Session) writeUsers(ctx context.Context, target writers.Target, events []core.Record) error {
	keyed := make([]core.Record, 0, len(events))
	hasUser := filter.NotNull("userId")
	for _, event := range events {
		ok, err := hasUser.ShouldInclude(ctx, event)
		if err != nil {
			return err
		}
		if ok {
			keyed = append(keyed, event)
		}
	}

	users := dedupe.LatestBy(keyed, "ts", "userId")
	log.Printf("writing %d users", len(users))
	err := writeTable(ctx, target, usersTable,
		readers.NewSliceReader(users),
		transform.Rename(map[string]string{
			"userId":    "user_id",
			"firstName": "first_name",
			"lastName":  "last_name",
		}),
		transform.ToString("user_id"),
	)
	return errors.Wrap(err, "writing users table")
}

// writeTime expands each distinct event timestamp into its calendar
// components.
func (s *Session) writeTime(ctx context.Context, target writers.Target, events []core.Record) error {
	times := dedupe.FirstBy(events, "start_time")
	log.Printf("writing %d timestamps", len(times))
	err := writeTable(ctx, target, timeTable,
		readers.NewSliceReader(times),
		transform.TimeParts("start_time"),
	)
	return errors.Wrap(err, "writing time table")
}

// writeSongplays joins events against the song catalog on title and
// artist name, with play length matched to song duration within
// songMatchTolerance. Events with no catalog match keep null song and
// artist ids.
func (s *Session) writeSongplays(ctx context.Context, target writers.Target, events, songs []core.Record) error {
	joined, err := join.Left(events, songs, join.Config{
		LeftKeys:  []string{"song", "artist"},
		RightKeys: []string{"title", "artist_name"},
		Tolerance: &join.Tolerance{
			LeftField:  "length",
			RightField: "duration",
			Epsilon:    songMatchTolerance,
		},
	})
	if err != nil {
		return errors.Wrap(err, "joining songplays")
	}
	log.Printf("writing %d songplays", len(joined))

	var nextID int64
	err = writeTable(ctx, target, songplaysTable,
		readers.NewSliceReader(joined),
		transform.Rename(map[string]string{
			"userId":    "user_id",
			"sessionId": "session_id",
			"userAgent": "user_agent",
		}),
		transform.ToString("user_id"),
		transform.ToInt("session_id"),
		core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
			out := record.Clone()
			out["songplay_id"] = nextID
			nextID++
			if start, ok := out["start_time"].(time.Time); ok {
				out["year"] = start.Year()
				out["month"] = int(start.Month())
			}
			return out, nil
		}),
	)
	return errors.Wrap(err, "writing songplays table")
}
