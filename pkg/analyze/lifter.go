package analyze

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/archmap/pkg/model"
	"github.com/matzehuels/archmap/pkg/source"
)

// LiftCrossScope resolves the cross-file references retained by the build
// pass and inserts a dependency edge between the minimal pair of sibling
// ancestors in the lowest common scope of each source/target.
//
// References whose target cannot be resolved inside the analyzed project
// are external and dropped silently. Duplicate edges are no-ops, so the
// resulting edge set is a pure function of the input regardless of
// processing order. The side tables are released afterwards; lifting twice
// is therefore not supported.
func (arch *Architecture) LiftCrossScope(logger *log.Logger) error {
	lifted, dropped := 0, 0
	for _, p := range arch.pending {
		connected, err := arch.connectReporting(p.sourceFile, p.ref)
		if err != nil {
			return err
		}
		if connected {
			lifted++
		} else {
			dropped++
		}
	}
	if logger != nil {
		logger.Debug("lifted cross-scope references", "lifted", lifted, "dropped", dropped)
	}

	// The side tables exist only to resolve references.
	arch.files = nil
	arch.refs = nil
	arch.pending = nil
	return nil
}

// connect resolves one reference and inserts the sibling-level edge, if
// any. Unresolvable references are ignored.
func (arch *Architecture) connect(sourceFile string, ref source.Reference) error {
	_, err := arch.connectReporting(sourceFile, ref)
	return err
}

func (arch *Architecture) connectReporting(sourceFile string, ref source.Reference) (bool, error) {
	s := arch.resolve(sourceFile, ref.SourceRange)
	t := arch.resolve(ref.TargetFilePath, ref.TargetRange)
	if s == model.NoID || t == model.NoID || s == t {
		return false, nil
	}

	scope, a, b := arch.lowestCommonScope(s, t)
	if scope == model.NoID || a == b {
		// One endpoint encloses the other; there is no sibling pair to
		// connect.
		return false, nil
	}
	added, err := arch.Tree.AddEdge(scope, a, b)
	if err != nil {
		return false, err
	}
	return added, nil
}

// resolve maps a file path and range to the deepest artifact whose range
// contains it. A range matching no symbol resolves to the file itself; an
// unknown path resolves to NoID.
func (arch *Architecture) resolve(path string, rng source.Range) model.ID {
	entry, ok := arch.files[path]
	if !ok {
		return model.NoID
	}
	best := entry.fileID
	bestDepth := 0
	for _, sym := range entry.symbols {
		if sym.depth > bestDepth && (sym.rng.Contains(rng) || sym.selection == rng) {
			best = sym.id
			bestDepth = sym.depth
		}
	}
	return best
}

// lowestCommonScope walks both ancestor chains and returns the lowest
// common scope plus the two ancestors of s and t that are its direct
// children. If one artifact encloses the other, the enclosing side's child
// is returned equal to the other side's and the caller skips the edge.
func (arch *Architecture) lowestCommonScope(s, t model.ID) (scope, a, b model.ID) {
	depthOf := func(id model.ID) int {
		d := 0
		for cur := arch.Tree.Artifact(id); cur != nil && cur.Parent() != model.NoID; cur = arch.Tree.Artifact(cur.Parent()) {
			d++
		}
		return d
	}

	ds, dt := depthOf(s), depthOf(t)
	a, b = s, t
	for ds > dt {
		a = arch.Tree.Artifact(a).Parent()
		ds--
	}
	for dt > ds {
		b = arch.Tree.Artifact(b).Parent()
		dt--
	}
	// One now encloses the other if the chains met.
	if a == b {
		return model.NoID, a, b
	}
	for arch.Tree.Artifact(a).Parent() != arch.Tree.Artifact(b).Parent() {
		a = arch.Tree.Artifact(a).Parent()
		b = arch.Tree.Artifact(b).Parent()
		if a == model.NoID || b == model.NoID {
			return model.NoID, a, b
		}
	}
	if a == b {
		return model.NoID, a, b
	}
	return arch.Tree.Artifact(a).Parent(), a, b
}
