package sqpack

// ChunkID is the 0-255 chunk index within a (repo, category) pair
// (GLOSSARY "Repository / Category / Chunk").
type ChunkID uint8

// Category is the first path segment of a virtual path, e.g. "exd" or
// "bgcommon". ID is the numeric category id SqPack uses internally for
// file naming (e.g. 0x0A for "exd").
type Category struct {
	Name string
	ID   uint32
}

// Repository names the expansion/repo namespace a path falls under.
// The default (base game) repository has an empty Name, which
// FSResolver maps to the conventional "ffxiv" directory.
type Repository struct {
	Name string
	ID   uint8
}

// Location is the result of a successful Index.Lookup: where a file's
// bytes live within the archive (§3 "Index entry", §6 "Location").
type Location struct {
	ChunkID    ChunkID
	DataFileID uint8
	Offset     uint32
}

// knownRepositories maps the path segment following the category to a
// Repository, per §4.E "hard-coded rule: the segment after the first
// slash if it matches a known repository name, else default repo 0".
// Real clients carry dozens of expansion names; this core recognizes
// the ones that ship with a base FFXIV install plus its expansions to
// date, which is sufficient for exercising the category/repo split the
// archive façade implements.
var knownRepositories = map[string]Repository{
	"ex1": {Name: "ex1", ID: 1},
	"ex2": {Name: "ex2", ID: 2},
	"ex3": {Name: "ex3", ID: 3},
	"ex4": {Name: "ex4", ID: 4},
	"ex5": {Name: "ex5", ID: 5},
}

// defaultRepository is repo 0, the base game.
var defaultRepository = Repository{Name: "", ID: 0}
