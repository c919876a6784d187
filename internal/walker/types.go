// Package walker performs the deterministic directory traversal that selects
// candidate files and builds the tree shape for rendering.
package walker

// Candidate is one file that survived ignore, hidden and symlink filtering
// and is eligible for content classification.
type Candidate struct {
	// AbsolutePath locates the file on disk for reading.
	AbsolutePath string

	// RelativePath is the forward-slash path relative to the walk root.
	RelativePath string
}

// TreeNode mirrors the included directories and files for tree-view
// rendering. Children are ordered by name, ascending and case-sensitive.
type TreeNode struct {
	Name     string
	Path     string // relative to the root; "" for the root node itself
	IsDir    bool
	Children []*TreeNode
}

// SkippedReason clarifies why an entry was not processed.
type SkippedReason string

const (
	ReasonHidden        SkippedReason = "Hidden (dotfile policy)"
	ReasonIgnoredRule   SkippedReason = "Ignored (pattern rule)"
	ReasonSymlink       SkippedReason = "Symlink (not followed)"
	ReasonSymlinkCycle  SkippedReason = "Symlink (cycle detected)"
	ReasonSymlinkBroken SkippedReason = "Symlink (unresolvable target)"
	ReasonReadError     SkippedReason = "Read error"
	ReasonNotRegular    SkippedReason = "Not a regular file"
)

// SkippedItem records one path that traversal passed over, with the reason.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
	Err    error         `json:"-"`
}

// Result is the complete outcome of one walk: the ordered candidate
// sequence, the tree shape, and every skipped entry.
type Result struct {
	Candidates []Candidate
	Tree       *TreeNode
	Skipped    []SkippedItem
}
