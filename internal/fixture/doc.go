// Package fixture runs offline roll fixtures.
//
// A fixture pins one selection: the block hash, the roll token, the
// candidate list, and the expected outcome. Fixtures make it possible to
// check the roller against known historical results without network access.
//
// # Fixture Format
//
//	name: seed_one
//	description: "hash 0 with roll 1 seeds the generator with 1"
//	hash: "0"
//	roll: "1"
//	candidates: [a, b, c, d, e, f, g, h, i, j]
//	expect:
//	  index: 5
//	  element: f
//
// candidates_file may replace candidates; the path is relative to the
// fixture file and is split into lines the same way a fetched list is.
// expect.error ("invalid_seed" or "empty_candidates") asserts that the roll
// fails.
//
// Every file is checked against an embedded CUE schema before it is
// decoded, so typos and wrongly typed fields are reported with their path.
package fixture
