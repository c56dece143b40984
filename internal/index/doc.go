// Package index scrapes map archive names out of FastDL directory listings.
//
// FastDL hosts serve whatever their web server produces: Apache or nginx
// autoindex HTML, hand-written pages, or a bare newline-separated list. The
// parser works line by line and never fails; lines it cannot make sense of
// are counted and skipped.
package index
