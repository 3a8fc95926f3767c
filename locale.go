package postfix

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// LocalePriorities expands BCP 47 tags into a postfix fallback chain:
// each tag is followed by its base language with script, then its base
// language, before the next tag. "cs-CZ", "en" gives cs-CZ, cs, en.
//
// Postfixes keep the canonical tag form, so files must be named after it
// (lang_cs-CZ.json, lang_zh-Hant.json).
func LocalePriorities(tags ...string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	add := func(postfix string) {
		if postfix == "" || postfix == "und" {
			return
		}
		if _, exists := seen[postfix]; exists {
			return
		}
		seen[postfix] = struct{}{}
		out = append(out, postfix)
	}

	for _, raw := range tags {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("%w: locale %q: %v", ErrConfiguration, raw, err)
		}
		add(tag.String())

		base, baseConfidence := tag.Base()
		script, scriptConfidence := tag.Script()
		if scriptConfidence == language.Exact && baseConfidence != language.No {
			add(base.String() + "-" + script.String())
		}
		if baseConfidence != language.No {
			add(base.String())
		}
	}
	return out, nil
}
