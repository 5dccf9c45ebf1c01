package dfl

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pitchlab/formations/internal/fsutil"
)

// MatchFiles pairs the two XML documents that describe one match.
type MatchFiles struct {
	MatchID          string
	MatchInformation string
	Positions        string
}

// DiscoverMatches pairs matchinformation and positions_raw files found in
// dir by their shared match identifier. Pairs come back sorted by match
// id so downstream aggregation order is deterministic. Files without a
// counterpart are skipped.
func DiscoverMatches(fsys fsutil.FileSystem, dir string) ([]MatchFiles, error) {
	names, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list match directory: %w", err)
	}

	infos := make(map[string]string)
	positions := make(map[string]string)
	for _, name := range names {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		id, ok := matchKey(name)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(name, "matchinformation"):
			infos[id] = name
		case strings.Contains(name, "positions_raw"):
			positions[id] = name
		}
	}

	ids := make([]string, 0, len(infos))
	for id := range infos {
		if _, ok := positions[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	pairs := make([]MatchFiles, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, MatchFiles{
			MatchID:          id,
			MatchInformation: filepath.Join(dir, infos[id]),
			Positions:        filepath.Join(dir, positions[id]),
		})
	}
	return pairs, nil
}

// matchKey extracts the DFL match identifier token (DFL-MAT-...) from a
// file name.
func matchKey(name string) (string, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, tok := range strings.Split(base, "_") {
		if strings.HasPrefix(tok, "DFL-MAT-") {
			return tok, true
		}
	}
	return "", false
}
