// Package modifier implements the modifier catalog and resolver: parsing of
// compact and expanded modifier declarations, and validation of the parsed
// modifiers against capability categories, against each other, and against
// their declared stacking order.
package modifier

// Kind is one of the closed set of modifier kinds.
type Kind string

const (
	KindRetry     Kind = "retry"
	KindCache     Kind = "cache"
	KindTimeout   Kind = "timeout"
	KindAuth      Kind = "auth"
	KindRateLimit Kind = "rate-limit"
	KindLog       Kind = "log"
	KindFallback  Kind = "fallback"
	KindBatch     Kind = "batch"
	KindParallel  Kind = "parallel"
	KindDryRun    Kind = "dry-run"
)

// allKinds keeps the catalog order used for listings.
var allKinds = []Kind{
	KindRetry, KindCache, KindTimeout, KindAuth, KindRateLimit,
	KindLog, KindFallback, KindBatch, KindParallel, KindDryRun,
}

// AllKinds returns every modifier kind in catalog order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind returns the Kind for s, or false if s is not a known kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Category is a capability category a component declares.
type Category string

const (
	CategoryFetch     Category = "fetch"
	CategoryStore     Category = "store"
	CategorySearch    Category = "search"
	CategoryExecute   Category = "execute"
	CategoryTransform Category = "transform"
)

// allCategories is also the column order of the compatibility matrix.
var allCategories = []Category{
	CategoryFetch, CategoryStore, CategorySearch, CategoryExecute, CategoryTransform,
}

// AllCategories returns every capability category in matrix column order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory returns the Category for s, or false if s is not a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range allCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func categoryIndex(c Category) int {
	for i, cc := range allCategories {
		if cc == c {
			return i
		}
	}
	return -1
}

// Verdict is the compatibility of a modifier kind with a capability category.
type Verdict int

const (
	Compatible Verdict = iota
	Caveat
	Incompatible
)

func (v Verdict) String() string {
	switch v {
	case Compatible:
		return "compatible"
	case Caveat:
		return "caveat"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// Symbol returns a one-character rendering used by tabular listings.
func (v Verdict) Symbol() string {
	switch v {
	case Compatible:
		return "✓"
	case Caveat:
		return "~"
	case Incompatible:
		return "✗"
	default:
		return "?"
	}
}

const (
	fit = Compatible
	cav = Caveat
	bad = Incompatible
)

// compatibilityMatrix is indexed by kind, then by category in allCategories
// order: fetch, store, search, execute, transform.
var compatibilityMatrix = map[Kind][5]Verdict{
	KindRetry:     {fit, cav, fit, cav, bad},
	KindCache:     {fit, bad, fit, bad, fit},
	KindTimeout:   {fit, fit, fit, cav, fit},
	KindAuth:      {fit, fit, fit, fit, cav},
	KindRateLimit: {fit, fit, fit, fit, cav},
	KindLog:       {fit, fit, fit, fit, fit},
	KindFallback:  {fit, cav, fit, cav, fit},
	KindBatch:     {cav, fit, cav, fit, fit},
	KindParallel:  {fit, cav, fit, cav, fit},
	KindDryRun:    {cav, fit, cav, fit, cav},
}

type cell struct {
	kind     Kind
	category Category
}

// verdictNotes explains every non-compatible cell of the matrix.
var verdictNotes = map[cell]string{
	{KindRetry, CategoryStore}:         "repeated writes may duplicate data unless the store is idempotent",
	{KindRetry, CategoryExecute}:       "a retried effect may run more than once",
	{KindRetry, CategoryTransform}:     "a conversion is deterministic, so retrying cannot change its outcome",
	{KindCache, CategoryStore}:         "a cached write would skip persisting the data",
	{KindCache, CategoryExecute}:       "a cached result would skip the external effect",
	{KindTimeout, CategoryExecute}:     "an effect that timed out may still complete remotely",
	{KindAuth, CategoryTransform}:      "a local conversion has no service to authenticate against",
	{KindRateLimit, CategoryTransform}: "a local conversion has no remote quota to protect",
	{KindFallback, CategoryStore}:      "a fallback store may leave data split across backends",
	{KindFallback, CategoryExecute}:    "the fallback may run after a partial effect already happened",
	{KindBatch, CategoryFetch}:         "batching delays the first fetched result",
	{KindBatch, CategorySearch}:        "batched queries merge their result sets",
	{KindParallel, CategoryStore}:      "concurrent writes may conflict",
	{KindParallel, CategoryExecute}:    "concurrent effects may race each other",
	{KindDryRun, CategoryFetch}:        "reads have no side effects to suppress",
	{KindDryRun, CategorySearch}:       "lookups have no side effects to suppress",
	{KindDryRun, CategoryTransform}:    "a conversion has no side effects to suppress",
}

// Compatibility returns the verdict for applying kind to category, with the
// explanatory note for non-compatible cells. Unknown inputs are compatible.
func Compatibility(kind Kind, category Category) (Verdict, string) {
	row, ok := compatibilityMatrix[kind]
	if !ok {
		return Compatible, ""
	}
	idx := categoryIndex(category)
	if idx < 0 {
		return Compatible, ""
	}
	v := row[idx]
	return v, verdictNotes[cell{kind, category}]
}

// exclusivePair is a pair of kinds that may not appear in the same list.
type exclusivePair struct {
	a, b   Kind
	reason string
}

var exclusivePairs = []exclusivePair{
	{KindDryRun, KindCache, "a simulated run would memoize results that never happened"},
	{KindDryRun, KindRetry, "simulated calls never fail, so the retry can never trigger"},
}

// stackingRule flags an order-sensitive adjacent pair: first declared
// immediately before second.
type stackingRule struct {
	first, second Kind
	consequence   string
}

var stackingRules = []stackingRule{
	{KindCache, KindRetry, "a cached failure short-circuits the retry"},
	{KindTimeout, KindRetry, "the timeout bounds all retry attempts together instead of each attempt"},
	{KindCache, KindLog, "cache hits bypass logging"},
	{KindParallel, KindRateLimit, "the rate limit applies per parallel worker instead of globally"},
	{KindBatch, KindCache, "results are cached per batch instead of per item"},
}

// kindDocs is the short description shown by catalog listings.
var kindDocs = map[Kind]string{
	KindRetry:     "re-run the component on failure (retry:3)",
	KindCache:     "memoize results for a duration (cache:5m)",
	KindTimeout:   "bound the component's running time (timeout:30s)",
	KindAuth:      "attach credentials of an auth type (auth:oauth)",
	KindRateLimit: "limit calls per time window (rate-limit:100/min)",
	KindLog:       "log invocations at a level (log:debug)",
	KindFallback:  "use another skill when this one fails (fallback:backup-search)",
	KindBatch:     "group inputs into batches (batch:50)",
	KindParallel:  "run invocations concurrently (parallel:4)",
	KindDryRun:    "simulate without side effects (dry-run)",
}

// Describe returns the short description of a modifier kind.
func Describe(kind Kind) string {
	return kindDocs[kind]
}
