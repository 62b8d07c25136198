// Package rawdoc resolves a documentation slug and locale to the raw source
// file behind a page.
//
// Resolution is a pure function of the request and the filesystem: the slug is
// validated syntactically, candidate files are generated in extension
// precedence order, every candidate is re-checked for containment in the
// documents root, and the first readable one wins. No other locale is tried.
package rawdoc
