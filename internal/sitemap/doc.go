// Package sitemap builds sitemap.xml and robots.txt for the static site export
// and keeps them current, either on a fixed schedule or by watching the export
// directory for changes.
package sitemap
