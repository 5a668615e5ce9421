package scoring

import "strings"

// categoryKeywords maps a question category to the technical terms that earn
// relevance credit in the fallback scorer. Matching is case-insensitive.
var categoryKeywords = map[string][]string{
	"react": {
		"component", "state", "props", "hooks", "useeffect", "usestate",
		"render", "virtual dom", "jsx", "lifecycle",
	},
	"javascript": {
		"closure", "scope", "hoisting", "prototype", "async", "await",
		"promise", "callback", "let", "const", "arrow function",
	},
	"node.js": {
		"event loop", "callback", "async", "await", "promise", "stream",
		"non-blocking", "libuv", "module", "express",
	},
	"api design": {
		"rest", "endpoint", "http", "get", "post", "put", "delete",
		"status code", "authentication", "token", "pagination", "resource",
	},
	"databases": {
		"sql", "nosql", "index", "query", "transaction", "schema",
		"normalization", "acid", "shard", "replication", "join",
	},
	"system design": {
		"scalability", "load balancer", "cache", "queue", "websocket",
		"microservice", "horizontal", "latency", "throughput", "partition",
	},
}

// genericKeywords earn credit for any category without its own list.
var genericKeywords = []string{
	"function", "variable", "object", "array", "server", "client",
	"database", "api", "performance", "test", "error", "async",
}

// keywordsFor returns the keyword list for a category, falling back to the
// generic technical list for unknown categories.
func keywordsFor(category string) []string {
	if kws, ok := categoryKeywords[strings.ToLower(strings.TrimSpace(category))]; ok {
		return kws
	}
	return genericKeywords
}

// countKeywordMatches counts how many keywords appear in the answer text.
func countKeywordMatches(answer string, keywords []string) int {
	lower := strings.ToLower(answer)
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return matches
}
