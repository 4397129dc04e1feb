// Package data loads the data objects that templates are expanded against.
//
// Data files are decoded by extension: JSON (.json), YAML (.yaml, .yml), and
// HCL (.hcl, top-level attributes only). Any other file loads as its text.
//
// # Deferred sources
//
// [Resolve] replaces marker mappings with [tmpl.Future] values so a static
// data file can describe content that arrives later:
//
//	bio:
//	  $file: bio.html        # settles with the loaded file
//	feed:
//	  $value: [1, 2, 3]      # settles with $value ...
//	  $delay: 250ms          # ... after the delay
//	broken:
//	  $reject: unavailable   # is rejected with the given message
//
// Relative $file paths are resolved against the directory of the file that
// names them.
//
// # Overrides
//
// [Set] evaluates an expr-lang expression against the data and stores the
// result under a dotted key:
//
//	data.Set(obj, "user.greeting", `"hi " + user.name`)
package data
