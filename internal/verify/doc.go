// Package verify checks a generated manifest against the updater public
// key: every platform entry's signature must match its artifact in the
// bundle directory. The public key may be supplied directly or read from
// the updater plugin section of tauri.conf.json.
package verify
