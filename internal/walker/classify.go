package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/treeward/treeward/internal/rules"
)

// ClassifyPath classifies a single filesystem path against the full rule
// list, outside of any walk. Diagnostic commands use it to answer "what
// would a scan do with this entry".
func ClassifyPath(rootDir, path string, list *rules.List) (Status, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return StatusNew, fmt.Errorf("walker: absolute path for %q: %w", rootDir, err)
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(absRoot, path)
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return StatusNew, fmt.Errorf("walker: %q is outside the root %q", path, rootDir)
	}
	if rel == "." {
		// The root itself is never subject to ignore rules.
		return StatusNew, nil
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return StatusNew, fmt.Errorf("walker: stat %q: %w", path, err)
	}
	parentInfo, err := os.Lstat(filepath.Dir(abs))
	if err != nil {
		return StatusNew, fmt.Errorf("walker: stat parent of %q: %w", path, err)
	}
	dev, ino := statNumbers(info)
	parentDev, _ := statNumbers(parentInfo)

	entry := rules.Entry{
		Path:      "./" + filepath.ToSlash(rel),
		Type:      fileTypeOf(info.Mode()),
		Dev:       dev,
		Inode:     ino,
		ParentDev: parentDev,
	}
	outcome, err := rules.Classify(&entry, rules.NewFullView(list))
	if err != nil {
		return StatusNew, err
	}
	switch outcome {
	case rules.OutcomeIgnored:
		return StatusIgnored, nil
	case rules.OutcomeTaken:
		return StatusTaken, nil
	}
	return StatusNew, nil
}
