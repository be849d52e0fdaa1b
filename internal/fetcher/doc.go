// Package fetcher downloads YouTube automatic captions with yt-dlp.
//
// The downloader is invoked with --skip-download so only the WebVTT caption
// file is written. Each call gets a fresh scratch directory and a random base
// name, so concurrent sessions never read each other's files, and the
// directory is removed whether or not the download succeeded.
package fetcher
