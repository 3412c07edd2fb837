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
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Package lake builds the music-streaming data lake: it reads song
// metadata and activity logs from the configured input location and
// writes the songs, artists, users, time, and songplays tables as
// partitioned Parquet file sets to the output location.

// Config holds the pipeline configuration. Values come from a dotenv
// style config file (dl.cfg by convention) with environment variables
// taking precedence.
type Config struct {
	AccessKeyID     string // AWS_ACCESS_KEY_ID
	SecretAccessKey string // AWS_SECRET_ACCESS_KEY
	Region          string // AWS_REGION
	InputData       string // INPUT_DATA: path or s3:// URL holding song_data/ and log_data/
	OutputData      string // OUTPUT_DATA: path or s3:// URL receiving the table file sets
}

// LoadConfig reads the config file at path and applies environment
// overrides. A missing file is tolerated so fully environment-driven
// runs work; missing INPUT_DATA or OUTPUT_DATA is an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("dotenv")
	v.SetDefault("AWS_REGION", "us-west-2")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg := Config{
		AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		Region:          v.GetString("AWS_REGION"),
		InputData:       v.GetString("INPUT_DATA"),
		OutputData:      v.GetString("OUTPUT_DATA"),
	}

	if cfg.InputData == "" {
		return Config{}, errors.New("INPUT_DATA must be set")
	}
	if cfg.OutputData == "" {
		return Config{}, errors.New("OUTPUT_DATA must be set")
	}

	return cfg, nil
}
