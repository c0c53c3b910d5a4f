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

// Package cli wires tormake's argument parsing, configuration loading,
// and display formatting into the operations pkg/torrent exposes. None
// of this is part of the core metainfo engine; it is the external
// collaborator layer spec'd out as abstract Logger/ProgressSink
// interfaces at the core boundary.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raklaptudirm/tormake/pkg/torrent"
	"github.com/raklaptudirm/tormake/pkg/walk"
)

const (
	minPieceExponent = 14
	maxPieceExponent = 27
)

type flags struct {
	output      string
	pieceExp    uint
	pieceExpSet bool
	announce    []string
	private     bool
	comment     string
	noDate      bool
	walkMode    int
	walkModeSet bool
	force       bool
	quiet       bool
}

// Execute builds and runs the tormake root command against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "tormake [path | torrent.torrent | torrent.torrent path]",
		Short: "Create, inspect, and verify BitTorrent metainfo files",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.pieceExpSet = cmd.Flags().Changed("piece-size")
			f.walkModeSet = cmd.Flags().Changed("walk-mode")
			return dispatch(args, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (must end in .torrent)")
	cmd.Flags().UintVarP(&f.pieceExp, "piece-size", "l", 0, "piece length exponent (14..27, piece_length = 2^N)")
	cmd.Flags().StringArrayVarP(&f.announce, "announce", "a", nil, "tracker announce URL (repeatable)")
	cmd.Flags().BoolVarP(&f.private, "private", "p", false, "mark the torrent private")
	cmd.Flags().StringVarP(&f.comment, "comment", "c", "", "comment to embed in the torrent")
	cmd.Flags().BoolVarP(&f.noDate, "no-date", "d", false, "omit the creation date")
	cmd.Flags().IntVarP(&f.walkMode, "walk-mode", "w", 0, "walk mode: 0=default 1=alphabetical 2=bfs-alphabetical 3=bfs-level 4=file-size")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "overwrite the output file if it exists")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress non-error output")

	return cmd
}

func dispatch(args []string, f flags) error {
	switch len(args) {
	case 1:
		if strings.HasSuffix(args[0], ".torrent") {
			return runInspect(args[0])
		}
		return runCreate(args[0], f)
	case 2:
		var torrentPath, targetPath string
		switch {
		case strings.HasSuffix(args[0], ".torrent"):
			torrentPath, targetPath = args[0], args[1]
		case strings.HasSuffix(args[1], ".torrent"):
			torrentPath, targetPath = args[1], args[0]
		default:
			return fmt.Errorf("one of the two arguments must end in .torrent")
		}
		return runVerify(torrentPath, targetPath, f)
	default:
		return fmt.Errorf("provide a target to create a torrent, a .torrent file to inspect, or both to verify")
	}
}

func runCreate(target string, f flags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	exponent := f.pieceExp
	if !f.pieceExpSet {
		if cfg.PieceLength != nil {
			exponent = *cfg.PieceLength
		} else {
			size := int64(0)
			if _, entries, walkErr := walk.Walk(target, walk.Default); walkErr == nil {
				for _, e := range entries {
					size += e.Length
				}
			}
			exponent = torrent.RecommendedPieceLength(size)
		}
	}
	if exponent < minPieceExponent || exponent > maxPieceExponent {
		return fmt.Errorf("piece size exponent must be between %d and %d inclusive", minPieceExponent, maxPieceExponent)
	}
	pieceLength := int64(1) << exponent

	outputPath := f.output
	if outputPath == "" {
		outputPath = target + ".torrent"
	} else if !strings.HasSuffix(outputPath, ".torrent") {
		return fmt.Errorf("output path must end in .torrent")
	}

	announce := f.announce
	if len(announce) == 0 {
		announce = cfg.Announce
	}
	var announceList [][]string
	if len(announce) > 0 {
		announceList = [][]string{announce}
	}

	walkMode := f.walkMode
	if !f.walkModeSet && cfg.WalkMode != nil {
		walkMode = *cfg.WalkMode
	}
	mode, ok := walk.Parse(walkMode)
	if !ok {
		return fmt.Errorf("walk mode must be between 0 and 4 inclusive")
	}

	private := f.private
	if !f.private && cfg.Private != nil {
		private = *cfg.Private
	}

	var creationDate *int64
	if !f.noDate {
		now := time.Now().Unix()
		creationDate = &now
	}

	logger := newLogger(f.quiet)
	progress := newProgress("hashing", f.quiet, 0)

	if !f.quiet {
		fmt.Printf("target:  %s\n", target)
		fmt.Printf("torrent: %s\n", outputPath)
		fmt.Printf("piece length: %d bytes\n", pieceLength)
	}

	t, err := torrent.Create(target, torrent.CreateOptions{
		Announce:     firstOrEmpty(announce),
		AnnounceList: announceList,
		Comment:      f.comment,
		CreatedBy:    "tormake",
		CreationDate: creationDate,
		Encoding:     "UTF-8",
		Private:      private,
		PieceLength:  pieceLength,
		WalkMode:     mode,
		Logger:       logger,
		Progress:     progress,
	})
	if err != nil {
		return err
	}

	if err := torrent.WriteFile(t, outputPath, f.force); err != nil {
		return err
	}

	if !f.quiet {
		fmt.Printf("info hash: %s\n", t.InfoHashHex())
	}
	return nil
}

func runInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := torrent.Decode(data)
	if err != nil {
		return err
	}
	fmt.Print(Summary(t))
	return nil
}

func runVerify(torrentPath, targetPath string, f flags) error {
	data, err := os.ReadFile(torrentPath)
	if err != nil {
		return err
	}
	t, err := torrent.Decode(data)
	if err != nil {
		return err
	}

	base := filepath.Base(filepath.Clean(targetPath))
	if base != t.Info.Name {
		return fmt.Errorf("target name %q does not match torrent name %q", base, t.Info.Name)
	}

	if !f.quiet {
		fmt.Printf("target:  %s\n", targetPath)
		fmt.Printf("torrent: %s\n", torrentPath)
	}

	progress := newProgress("verifying", f.quiet, 0)
	report, err := torrent.Verify(targetPath, t.Info, 0, progress)
	if err != nil {
		return err
	}

	fmt.Print(VerifyReport(t.Info, report))
	if !report.OK() {
		return fmt.Errorf("verification found mismatches")
	}
	return nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
