// Package media resolves image references found in rendered documents.
//
// A Loader turns inline data URIs, local files and remote URLs into image
// bytes plus a MIME type the presentation writer can embed. Results are
// memoized per reference for the lifetime of the Loader, so a Prefetch pass
// ahead of translation makes the later, sequential loads free.
package media
