// Package merge implements the three-way merge over flat tree snapshots
// and the higher-level merge orchestration (fast-forward detection,
// MERGE_HEAD bookkeeping, merged-index checkout).
package merge

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/difftext"
	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
	"github.com/relayvcs/ugit/internal/treeobj"
)

// binaryConflictSentinel prefixes a merged value when either side's
// content is not valid UTF-8 and a line-level merge cannot be attempted;
// the two sides are concatenated verbatim around a distinct separator
// instead. This is an original format, not meant to resemble any
// mainstream tool's binary conflict representation.
const (
	binaryConflictSentinel = "\x00UGIT-BINARY-CONFLICT\x00"
	binaryConflictSep      = "\x00:\x00"
)

// Conflict markers bracketing a textual merge conflict region. Distinct
// from the near-universal "<<<<<<<" style on purpose.
const (
	conflictOursHeader   = "##### ours #####\n"
	conflictTheirsHeader = "##### theirs #####\n"
	conflictFooter       = "##### end #####\n"
)

// ThreeWay merges base, ours, and theirs tree snapshots (path->blob OID
// maps) by reading and merging blob content, returning a flat
// path->content map ready to be stored as blobs and built into an index.
func ThreeWay(store *objstore.Store, base, ours, theirs index.Map) (map[string][]byte, error) {
	paths := make(map[string]struct{})
	for p := range base {
		paths[p] = struct{}{}
	}
	for p := range ours {
		paths[p] = struct{}{}
	}
	for p := range theirs {
		paths[p] = struct{}{}
	}

	result := make(map[string][]byte, len(paths))
	for path := range paths {
		baseOid, hasBase := base[path]
		oursOid, hasOurs := ours[path]
		theirsOid, hasTheirs := theirs[path]

		if !hasOurs && !hasTheirs {
			continue // present only in base: both sides deleted it
		}

		oursEqualsTheirs := hasOurs == hasTheirs && (!hasOurs || oursOid == theirsOid)
		oursEqualsBase := hasOurs == hasBase && (!hasOurs || oursOid == baseOid)
		theirsEqualsBase := hasTheirs == hasBase && (!hasTheirs || theirsOid == baseOid)

		if oursEqualsTheirs {
			if !hasOurs {
				continue
			}
			content, err := readBlob(store, oursOid)
			if err != nil {
				return nil, err
			}
			result[path] = content
			continue
		}
		if oursEqualsBase {
			// ours unchanged from base: take theirs (possibly a deletion).
			if !hasTheirs {
				continue
			}
			content, err := readBlob(store, theirsOid)
			if err != nil {
				return nil, err
			}
			result[path] = content
			continue
		}
		if theirsEqualsBase {
			if !hasOurs {
				continue
			}
			content, err := readBlob(store, oursOid)
			if err != nil {
				return nil, err
			}
			result[path] = content
			continue
		}

		baseContent, err := readBlobOrEmpty(store, baseOid, hasBase)
		if err != nil {
			return nil, err
		}
		oursContent, err := readBlobOrEmpty(store, oursOid, hasOurs)
		if err != nil {
			return nil, err
		}
		theirsContent, err := readBlobOrEmpty(store, theirsOid, hasTheirs)
		if err != nil {
			return nil, err
		}

		merged, err := mergeContent(baseContent, oursContent, theirsContent)
		if err != nil {
			return nil, fmt.Errorf("merge: %s: %w", path, err)
		}
		result[path] = merged
	}
	return result, nil
}

func readBlob(store *objstore.Store, oid string) ([]byte, error) {
	data, err := store.GetObject(oid, objstore.Blob)
	if err != nil {
		return nil, fmt.Errorf("merge: reading blob %s: %w", oid, err)
	}
	return data, nil
}

func readBlobOrEmpty(store *objstore.Store, oid string, has bool) ([]byte, error) {
	if !has {
		return nil, nil
	}
	return readBlob(store, oid)
}

// mergeContent merges two UTF-8 texts against their common base line by
// line. If either side is not valid UTF-8, the merge falls back to a
// sentinel-delimited binary concatenation.
func mergeContent(base, ours, theirs []byte) ([]byte, error) {
	if !utf8.Valid(ours) || !utf8.Valid(theirs) {
		var b bytes.Buffer
		b.WriteString(binaryConflictSentinel)
		b.Write(ours)
		b.WriteString(binaryConflictSep)
		b.Write(theirs)
		return b.Bytes(), nil
	}

	baseLines := difftext.SplitLines(base)
	oursLines := difftext.SplitLines(ours)
	theirsLines := difftext.SplitLines(theirs)

	editsOurs := difftext.ComputeEdits(baseLines, oursLines)
	editsTheirs := difftext.ComputeEdits(baseLines, theirsLines)

	blocksOurs := editsToBlocks(editsOurs, oursLines)
	blocksTheirs := editsToBlocks(editsTheirs, theirsLines)

	merged := mergeWalk(baseLines, blocksOurs, blocksTheirs)
	out := joinLines(merged)
	return []byte(out), nil
}

// editBlock is a contiguous span of base lines replaced by newLines on
// one side of the merge.
type editBlock struct {
	baseStart, baseEnd int
	newLines           []string
}

func editsToBlocks(edits []difftext.Edit, newLines []string) []editBlock {
	var blocks []editBlock
	i := 0
	for i < len(edits) {
		if edits[i].Type == difftext.EditKeep {
			i++
			continue
		}
		block := editBlock{baseStart: -1, baseEnd: -1}
		for i < len(edits) && edits[i].Type != difftext.EditKeep {
			switch edits[i].Type {
			case difftext.EditDelete:
				if block.baseStart == -1 {
					block.baseStart = edits[i].OldLine
				}
				block.baseEnd = edits[i].OldLine + 1
			case difftext.EditInsert:
				if edits[i].NewLine < len(newLines) {
					block.newLines = append(block.newLines, newLines[edits[i].NewLine])
				}
			}
			i++
		}
		if block.baseStart == -1 {
			if i < len(edits) {
				block.baseStart = edits[i].OldLine
			} else {
				block.baseStart = prevOldLine(edits, i)
			}
			block.baseEnd = block.baseStart
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func prevOldLine(edits []difftext.Edit, at int) int {
	for i := at - 1; i >= 0; i-- {
		if edits[i].Type != difftext.EditInsert {
			return edits[i].OldLine + 1
		}
	}
	return 0
}

// mergeWalk interleaves ours/theirs edit blocks over the base lines,
// emitting unmodified base lines as context, a clean side's replacement
// when only one side changed a region, and a bracketed conflict region
// when both sides changed the same region to different content.
func mergeWalk(baseLines []string, blocksOurs, blocksTheirs []editBlock) []string {
	sort.Slice(blocksOurs, func(i, j int) bool { return blocksOurs[i].baseStart < blocksOurs[j].baseStart })
	sort.Slice(blocksTheirs, func(i, j int) bool { return blocksTheirs[i].baseStart < blocksTheirs[j].baseStart })

	var out []string
	io, it := 0, 0
	pos := 0

	for io < len(blocksOurs) || it < len(blocksTheirs) {
		var nOurs, nTheirs *editBlock
		if io < len(blocksOurs) {
			nOurs = &blocksOurs[io]
		}
		if it < len(blocksTheirs) {
			nTheirs = &blocksTheirs[it]
		}

		switch {
		case nOurs != nil && nTheirs != nil && overlaps(*nOurs, *nTheirs):
			start := min(nOurs.baseStart, nTheirs.baseStart)
			out = append(out, baseLines[pos:start]...)

			end := max(nOurs.baseEnd, nTheirs.baseEnd)
			combinedOurs := append([]string(nil), blocksOurs[io].newLines...)
			io++
			for io < len(blocksOurs) && blocksOurs[io].baseStart < end {
				combinedOurs = append(combinedOurs, blocksOurs[io].newLines...)
				end = max(end, blocksOurs[io].baseEnd)
				io++
			}
			combinedTheirs := append([]string(nil), blocksTheirs[it].newLines...)
			it++
			for it < len(blocksTheirs) && blocksTheirs[it].baseStart < end {
				combinedTheirs = append(combinedTheirs, blocksTheirs[it].newLines...)
				end = max(end, blocksTheirs[it].baseEnd)
				it++
			}

			if sliceEqual(combinedOurs, combinedTheirs) {
				out = append(out, combinedOurs...)
			} else {
				out = append(out, conflictOursHeader)
				out = append(out, combinedOurs...)
				out = append(out, conflictTheirsHeader)
				out = append(out, combinedTheirs...)
				out = append(out, conflictFooter)
			}
			pos = end

		case nOurs != nil && (nTheirs == nil || nOurs.baseStart <= nTheirs.baseStart):
			out = append(out, baseLines[pos:nOurs.baseStart]...)
			out = append(out, nOurs.newLines...)
			pos = nOurs.baseEnd
			io++

		default:
			out = append(out, baseLines[pos:nTheirs.baseStart]...)
			out = append(out, nTheirs.newLines...)
			pos = nTheirs.baseEnd
			it++
		}
	}
	if pos < len(baseLines) {
		out = append(out, baseLines[pos:]...)
	}
	return out
}

func overlaps(a, b editBlock) bool {
	if a.baseStart < b.baseEnd && b.baseStart < a.baseEnd {
		return true
	}
	if a.baseStart == a.baseEnd && a.baseStart >= b.baseStart && a.baseStart <= b.baseEnd {
		return true
	}
	if b.baseStart == b.baseEnd && b.baseStart >= a.baseStart && b.baseStart <= a.baseEnd {
		return true
	}
	return false
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func joinLines(lines []string) string {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
		if len(l) == 0 || l[len(l)-1] != '\n' {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Merge merges otherOid into HEAD. On a clean fast-forward, the working
// tree and HEAD are updated directly and no commit is required. Otherwise
// MERGE_HEAD is recorded and a merged index is checked out, leaving the
// caller to invoke Commit next to record the two-parent merge commit.
func Merge(graph *commitgraph.Graph, refStore *refs.Store, workDir, repoDir, otherOid string) (fastForward bool, err error) {
	head, err := refStore.GetRef("HEAD", true)
	if err != nil {
		return false, err
	}
	if head.IsMissing() {
		return false, fmt.Errorf("merge: HEAD has no commit yet")
	}

	base, err := graph.GetMergeBase(otherOid, head.Value)
	if err != nil {
		return false, err
	}

	if base == head.Value {
		other, err := graph.GetCommit(otherOid)
		if err != nil {
			return false, err
		}
		if err := treeobj.ReadTree(graph.Store, workDir, repoDir, other.Tree, true); err != nil {
			return false, err
		}
		if err := refStore.UpdateRef("HEAD", refs.Value{Value: otherOid}, false); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := refStore.UpdateRef("MERGE_HEAD", refs.Value{Value: otherOid}, false); err != nil {
		return false, err
	}

	cBase, err := graph.GetCommit(base)
	if err != nil {
		return false, err
	}
	cHead, err := graph.GetCommit(head.Value)
	if err != nil {
		return false, err
	}
	cOther, err := graph.GetCommit(otherOid)
	if err != nil {
		return false, err
	}

	baseTree, err := treeobj.GetTree(graph.Store, cBase.Tree, "")
	if err != nil {
		return false, err
	}
	headTree, err := treeobj.GetTree(graph.Store, cHead.Tree, "")
	if err != nil {
		return false, err
	}
	otherTree, err := treeobj.GetTree(graph.Store, cOther.Tree, "")
	if err != nil {
		return false, err
	}

	merged, err := ThreeWay(graph.Store, baseTree, headTree, otherTree)
	if err != nil {
		return false, err
	}

	newEntries := make(index.Map, len(merged))
	for path, content := range merged {
		oid, err := graph.Store.HashObject(content, objstore.Blob)
		if err != nil {
			return false, err
		}
		newEntries[path] = oid
	}

	if err := index.With(repoDir, func(entries index.Map) error {
		for k := range entries {
			delete(entries, k)
		}
		for k, v := range newEntries {
			entries[k] = v
		}
		return nil
	}); err != nil {
		return false, err
	}
	if err := treeobj.CheckoutIndex(graph.Store, workDir, newEntries); err != nil {
		return false, err
	}
	return false, nil
}
