/*

Package sqpack is the root of a Go module for reading a packed
game-data archive: a two-level chunked index/dat store (package
sqpack) plus the Excel sheet engine built on top of it (package excel),
wired together by package gamedata.

Subpackages:

  - sqpack: index/dat binary decoders, the bounded handle pool, and
    the Archive read façade.
  - excel: Exh/Exd binary decoders, the Sheet type with header/page
    caching, and the row/subrow iterator.
  - gamedata: adapts an Archive into the excel.Resource capability a
    Sheet needs, and exposes a single Client per archive root.
  - config: loads archive connection settings from TOML into the
    functional options the other packages expose.
  - xerrors, pathhash, binformat: small shared building blocks used
    throughout the above.

This file exists at the module root only to carry its package-level
documentation; no archive-reading code lives here.

*/
package sqpack
