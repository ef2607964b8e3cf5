package sqpack

import "strings"

// knownCategories maps a virtual path's leading segment to the numeric
// category id used in real archive file names (e.g. "040000.00.win32.dat0"
// for "chara"). This core only needs enough of the table to exercise
// the category/repo split in §4.E; an unrecognized category is a
// NotFound, not a hard failure, since a read-only consumer should be
// able to ask for a path from a category it doesn't know about and get
// a normal "not found" rather than a crash.
var knownCategories = map[string]uint32{
	"common":      0x00,
	"bgcommon":    0x01,
	"bg":          0x02,
	"cut":         0x03,
	"chara":       0x04,
	"shader":      0x05,
	"ui":          0x06,
	"sound":       0x07,
	"vfx":         0x08,
	"ui_script":   0x09,
	"exd":         0x0A,
	"game_script": 0x0B,
	"music":       0x0C,
}

// splitVirtualPath infers the category and repository from a virtual
// path and returns the remainder used for hashing, per §4.E: category
// is the first segment; repo is the following segment if it names a
// known repository, else the default repository. The repository
// segment, if consumed, stays part of the hashed remainder — it is a
// real directory component of the in-archive path, not a separate key.
func splitVirtualPath(path string) (category Category, repo Repository, remainder string, ok bool) {
	segments := strings.SplitN(path, "/", 2)
	catName := segments[0]
	id, known := knownCategories[catName]
	if !known {
		return Category{}, Repository{}, "", false
	}
	category = Category{Name: catName, ID: id}

	if len(segments) < 2 {
		return category, defaultRepository, "", true
	}
	remainder = segments[1]

	next := strings.SplitN(remainder, "/", 2)[0]
	if r, isRepo := knownRepositories[next]; isRepo {
		repo = r
	} else {
		repo = defaultRepository
	}
	return category, repo, remainder, true
}
