package modifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseCompact_ValueGrammars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		want  map[string]any
	}{
		{"retry:3", KindRetry, map[string]any{KeyAttempts: 3}},
		{"cache:5m", KindCache, map[string]any{KeyTTL: "5m"}},
		{"timeout:30s", KindTimeout, map[string]any{KeyDuration: "30s"}},
		{"auth:oauth", KindAuth, map[string]any{KeyType: "oauth"}},
		{"rate-limit:100/min", KindRateLimit, map[string]any{KeyRequests: 100, KeyPer: 1, KeyUnit: "min"}},
		{"rate-limit:5/10s", KindRateLimit, map[string]any{KeyRequests: 5, KeyPer: 10, KeyUnit: "s"}},
		{"log:debug", KindLog, map[string]any{KeyLevel: "debug"}},
		{"fallback:backup-search", KindFallback, map[string]any{KeySkill: "backup-search"}},
		{"batch:50", KindBatch, map[string]any{KeySize: 50}},
		{"parallel:4", KindParallel, map[string]any{KeyConcurrency: 4}},
		{"dry-run:false", KindDryRun, map[string]any{KeyEnabled: false}},
		{"dry-run:yes", KindDryRun, map[string]any{KeyEnabled: true}},
		{"retry", KindRetry, map[string]any{}},
		{"dry-run", KindDryRun, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pm, err := ParseCompact(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, pm.Kind)
			assert.Equal(t, tt.want, pm.Config)
			assert.Equal(t, FormCompact, pm.Form)
		})
	}
}

func TestParseCompact_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"retyr:3", `unknown modifier kind "retyr"`},
		{"retry:three", "invalid attempt count"},
		{"retry:0", "invalid attempt count"},
		{"cache:forever", "invalid cache ttl"},
		{"timeout:10", "invalid timeout"},
		{"rate-limit:fast", "invalid rate"},
		{"rate-limit:10/fortnight", "invalid rate unit"},
		{"log:loud", "invalid log level"},
		{"batch:-1", "invalid batch size"},
		{"parallel:x", "invalid concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCompact(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

// Each compact declaration survives parse, format, parse with an equivalent config.
func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"retry:3",
		"cache:5m",
		"timeout:30s",
		"auth:api-key",
		"rate-limit:100/min",
		"rate-limit:5/10s",
		"log:warn",
		"fallback:backup-search",
		"batch:50",
		"parallel:8",
		"dry-run:false",
		"dry-run:true",
		"cache",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			pm, err := ParseCompact(input)
			require.NoError(t, err)

			text, err := Format(pm)
			require.NoError(t, err)
			assert.Equal(t, input, text)

			again, err := ParseCompact(text)
			require.NoError(t, err)
			assert.Equal(t, pm.Config, again.Config)
		})
	}
}

func TestFormat_StructuredExtraFields(t *testing.T) {
	pm, err := ParseDeclaration(NewStructured("retry", map[string]any{"attempts": 3, "backoff": "exponential"}))
	require.NoError(t, err)

	_, err = Format(pm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backoff")
}

func TestFormat_StructuredFloatAttempts(t *testing.T) {
	pm, err := ParseDeclaration(NewStructured("retry", map[string]any{"attempts": float64(2)}))
	require.NoError(t, err)

	text, err := Format(pm)
	require.NoError(t, err)
	assert.Equal(t, "retry:2", text)
}

func TestParseStructured_Verbatim(t *testing.T) {
	cfg := map[string]any{"attempts": "many", "backoff": "linear"}
	pm, err := ParseDeclaration(NewStructured("retry", cfg))
	require.NoError(t, err)
	assert.Equal(t, KindRetry, pm.Kind)
	assert.Equal(t, FormStructured, pm.Form)
	assert.Equal(t, cfg, pm.Config)
}

func TestParse_IndependentFailures(t *testing.T) {
	specs := []Spec{Compact("retry:3"), Compact("bogus"), Compact("cache:5m"), Compact("log:loud")}

	parsed, errs := Parse(specs)
	require.Len(t, parsed, 2)
	assert.Equal(t, KindRetry, parsed[0].Kind)
	assert.Equal(t, KindCache, parsed[1].Kind)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "bogus")
	assert.Contains(t, errs[1], "log:loud")
}

func TestSpec_UnmarshalYAML(t *testing.T) {
	src := `
- retry:3
- cache: { ttl: 10m, key: "{{input.url}}" }
- dry-run:
- { retry: {}, cache: {} }
- {}
- timeout: 30
`
	var specs []Spec
	require.NoError(t, yaml.Unmarshal([]byte(src), &specs))
	require.Len(t, specs, 6)

	assert.Equal(t, CompactModifier{Kind: "retry", RawValue: "3", HasValue: true}, specs[0].Declaration)
	assert.Equal(t, StructuredModifier{Kind: "cache", Config: map[string]any{"ttl": "10m", "key": "{{input.url}}"}}, specs[1].Declaration)
	assert.Equal(t, StructuredModifier{Kind: "dry-run", Config: map[string]any{}}, specs[2].Declaration)

	_, errs := Parse(specs)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "exactly one key, found 2")
	assert.Contains(t, errs[1], "exactly one key, found 0")
	assert.Contains(t, errs[2], "configuration object")
}

func TestSpec_JSONRoundTrip(t *testing.T) {
	src := `["parallel:4", {"rate-limit": {"requests": 10}}]`
	var specs []Spec
	require.NoError(t, json.Unmarshal([]byte(src), &specs))
	require.Len(t, specs, 2)

	out, err := json.Marshal(specs)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}

func TestSpec_UnmarshalJSON_Invalid(t *testing.T) {
	var spec Spec
	err := json.Unmarshal([]byte(`42`), &spec)
	assert.Error(t, err)
}
