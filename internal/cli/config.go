// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"os"

	"gopkg.in/yaml.v3"
)

// config holds defaults read from an optional .tormake.yaml file in the
// working directory. Explicit flags always take precedence; config only
// fills in values the user did not pass on the command line.
type config struct {
	Announce    []string `yaml:"announce"`
	PieceLength *uint    `yaml:"pieceLength"`
	WalkMode    *int     `yaml:"walkMode"`
	Private     *bool    `yaml:"private"`
}

const configFileName = ".tormake.yaml"

// loadConfig reads .tormake.yaml from the current directory, if present.
// A missing file is not an error; it simply yields a zero config.
func loadConfig() (config, error) {
	data, err := os.ReadFile(configFileName)
	if os.IsNotExist(err) {
		return config{}, nil
	}
	if err != nil {
		return config{}, err
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
