// Package tokenstore persists refreshed TickTick tokens between runs.
//
// The cache is a JSON file in the user's cache directory, written with mode
// 0600. Each entry remembers a fingerprint of the access token it was seeded
// from; when the configured access token changes, the cached pair no longer
// applies and the configured credentials win.
package tokenstore
