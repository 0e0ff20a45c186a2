// Package cache stores generation results so that an unchanged file is not
// sent to the model twice.
//
// Lookups go through two tiers: a bounded in-memory LRU
// (hashicorp/golang-lru) in front of a directory of JSON entries sharded by
// digest prefix. Keys are SHA-256 digests of the model name and the full
// prompt. Entries past their expiry time are misses and are removed from
// both tiers.
//
// The default directory is $XDG_CACHE_HOME/codelens. Caching is off by
// default; a disabled Cache never stores anything.
package cache
