// Package todo models the task list and persists it to the store file.
//
// The store file ($HOME/.rustytasks) is a JSON array in insertion order:
//
//	[
//	  {
//	    "description": "buy milk",
//	    "group": "default",
//	    "priority": 3,
//	    "added_time": 1700000000,
//	    "done": false,
//	    "id": 1
//	  }
//	]
//
// # Reading
//
// Store.Load never fails. A missing file, a blank file, invalid JSON or a
// document rejected by the embedded JSON Schema (store.schema.json) all load
// as an empty list. Unknown keys are ignored. Missing or empty groups become
// "default" and priorities outside 1..3 become 3.
//
// # Writing
//
// Store.Save writes 2-space indented JSON with a trailing newline to a temp
// file in the same directory and renames it over the store. If the previous
// Load rejected a non-empty file, its bytes are first copied to
// .rustytasks.corrupt.<unix-seconds>.
//
// # Numbering
//
// Commands address tasks by 1-based position in the full list. Views number
// their rows from 1 again after filtering and sorting. Each task also has an
// opaque id assigned at creation; ids are not shown to the user.
//
// # Priority Range
//
//   - 1: High
//   - 2: Med
//   - 3: Low (default)
package todo
