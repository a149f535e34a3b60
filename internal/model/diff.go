package model

import (
	"crypto/sha256"
	"fmt"
)

// Change is one element-level difference between two screen states.
type Change struct {
	Type    string               `yaml:"type"              json:"type"` // "added", "removed", "changed"
	ID      int                  `yaml:"i"                 json:"i"`
	Label   string               `yaml:"t,omitempty"       json:"t,omitempty"`
	Kind    string               `yaml:"k,omitempty"       json:"k,omitempty"`
	Bounds  [4]int               `yaml:"b,omitempty"       json:"b,omitempty"`
	Changes map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// StateDiff is the result of comparing two screen states by content hash.
type StateDiff struct {
	Added          []Change `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []Change `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []Change `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int      `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether the diff contains no changes.
func (d StateDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// bucket is the quantization applied to bounds before hashing. Detector
// boxes jitter by a few pixels between runs on an unchanged screen; matching
// on exact pixels would report every element as removed+added.
const bucket = 16

// ElementHash computes a stable identity hash for an element based on its
// label, kind, and coarse position. Sequential IDs shift whenever the
// detector adds or drops an element, so identity across observations has to
// come from content.
func ElementHash(el Element) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d", el.Label, el.Kind, el.Bounds[0]/bucket, el.Bounds[1]/bucket)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffStates compares two element lists using content hashing for stable
// identity. Elements present in both are checked for moved bounds and
// changed interactivity.
func DiffStates(prev, curr []Element) StateDiff {
	prevByHash := make(map[string]Element, len(prev))
	for _, el := range prev {
		prevByHash[ElementHash(el)] = el
	}
	currByHash := make(map[string]Element, len(curr))
	for _, el := range curr {
		currByHash[ElementHash(el)] = el
	}

	var diff StateDiff

	for _, el := range curr {
		prevEl, existed := prevByHash[ElementHash(el)]
		if !existed {
			diff.Added = append(diff.Added, Change{Type: "added", ID: el.ID, Label: el.Label, Kind: el.Kind, Bounds: el.Bounds})
			continue
		}
		changes := diffProperties(prevEl, el)
		if len(changes) > 0 {
			diff.Changed = append(diff.Changed, Change{Type: "changed", ID: el.ID, Label: el.Label, Kind: el.Kind, Changes: changes})
		} else {
			diff.UnchangedCount++
		}
	}

	for _, el := range prev {
		if _, exists := currByHash[ElementHash(el)]; !exists {
			diff.Removed = append(diff.Removed, Change{Type: "removed", ID: el.ID, Label: el.Label, Kind: el.Kind, Bounds: el.Bounds})
		}
	}

	return diff
}

// diffProperties compares mutable properties between two elements matched by
// content hash. Label, kind, and coarse position are part of the hash so
// they won't differ here; exact bounds and interactivity can.
func diffProperties(prev, curr Element) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{fmt.Sprintf("%v", prev.Bounds), fmt.Sprintf("%v", curr.Bounds)}
	}
	if prev.Interactive != curr.Interactive {
		diffs["ix"] = [2]string{fmt.Sprintf("%v", prev.Interactive), fmt.Sprintf("%v", curr.Interactive)}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
