package log

import "sort"

// KV represents a set of key-value pairs to be logged.
type KV map[string]any

// kvToArgs flattens the first KV into the alternating key-value slice
// slog expects. Keys are sorted so log lines are stable. Extra KVs are
// ignored.
func kvToArgs(keyVals ...KV) []any {
	args := []any{}
	if len(keyVals) == 0 {
		return args
	}

	kv := keyVals[0]
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, kv[k])
	}
	return args
}

// kvToArgsNs is kvToArgs with the namespace prepended as the "ns"
// attribute, so namespaced loggers lead every line with it.
func kvToArgsNs(ns string, keyVals ...KV) []any {
	return append([]any{"ns", ns}, kvToArgs(keyVals...)...)
}
