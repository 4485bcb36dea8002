package modifier

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// compactKeys lists the configuration keys each kind can carry in compact form.
var compactKeys = map[Kind][]string{
	KindRetry:     {KeyAttempts},
	KindCache:     {KeyTTL},
	KindTimeout:   {KeyDuration},
	KindAuth:      {KeyType},
	KindRateLimit: {KeyRequests, KeyPer, KeyUnit},
	KindLog:       {KeyLevel},
	KindFallback:  {KeySkill},
	KindBatch:     {KeySize},
	KindParallel:  {KeyConcurrency},
	KindDryRun:    {KeyEnabled},
}

// Format renders a parsed modifier back into its compact "kind:value" form.
// It fails when the configuration carries fields the compact grammar cannot
// express, which only happens for expanded declarations.
func Format(pm ParsedModifier) (string, error) {
	if err := checkCompactable(pm); err != nil {
		return "", err
	}
	if len(pm.Config) == 0 {
		return string(pm.Kind), nil
	}

	var value string
	switch pm.Kind {
	case KindRetry:
		n, err := intField(pm.Config, KeyAttempts)
		if err != nil {
			return "", err
		}
		value = strconv.Itoa(n)

	case KindBatch:
		n, err := intField(pm.Config, KeySize)
		if err != nil {
			return "", err
		}
		value = strconv.Itoa(n)

	case KindParallel:
		n, err := intField(pm.Config, KeyConcurrency)
		if err != nil {
			return "", err
		}
		value = strconv.Itoa(n)

	case KindCache:
		value = stringField(pm.Config, KeyTTL)
	case KindTimeout:
		value = stringField(pm.Config, KeyDuration)
	case KindAuth:
		value = stringField(pm.Config, KeyType)
	case KindLog:
		value = stringField(pm.Config, KeyLevel)
	case KindFallback:
		value = stringField(pm.Config, KeySkill)

	case KindRateLimit:
		requests, err := intField(pm.Config, KeyRequests)
		if err != nil {
			return "", err
		}
		per := 1
		if _, ok := pm.Config[KeyPer]; ok {
			if per, err = intField(pm.Config, KeyPer); err != nil {
				return "", err
			}
		}
		unit := stringField(pm.Config, KeyUnit)
		if per == 1 {
			value = fmt.Sprintf("%d/%s", requests, unit)
		} else {
			value = fmt.Sprintf("%d/%d%s", requests, per, unit)
		}

	case KindDryRun:
		enabled, ok := pm.Config[KeyEnabled].(bool)
		if !ok {
			return "", fmt.Errorf("dry-run: %q must be a boolean", KeyEnabled)
		}
		value = strconv.FormatBool(enabled)

	default:
		return "", fmt.Errorf("unknown modifier kind %q", pm.Kind)
	}

	return string(pm.Kind) + ":" + value, nil
}

func checkCompactable(pm ParsedModifier) error {
	allowed := compactKeys[pm.Kind]
	var extra []string
	for key := range pm.Config {
		if !contains(allowed, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%s: fields %s have no compact form", pm.Kind, strings.Join(extra, ", "))
	}
	return nil
}

// intField reads an integer that may have been decoded as int, int64 or float64.
func intField(config map[string]any, key string) (int, error) {
	switch v := config[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%q must be an integer, got %v", key, config[key])
}

func stringField(config map[string]any, key string) string {
	if s, ok := config[key].(string); ok {
		return s
	}
	return fmt.Sprint(config[key])
}
