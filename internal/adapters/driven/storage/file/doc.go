// Package file provides a directory-per-company implementation of the
// research cache.
//
// Each company gets a directory named by its slug under the base directory.
// Records are stored as indented JSON files named <key>.json next to the
// downloaded documents and rendered reports:
//
//	data/cache/
//	  acme/
//	    basic_overview.json
//	    deep_collect.json
//	    doc_1.pdf
//	    account_plan.html
//
// Record age is the file modification time.
package file
