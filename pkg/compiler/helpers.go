package compiler

import (
	"sort"
	"strings"
)

// helperSource holds the JS implementation of each runtime helper the
// estree conversion may reference by name (spec §4.9 step 1: "the set of
// used helpers is recorded for later prelude injection by the driver").
// Keys match estree.Converter.UsedHelpers' identifiers exactly.
var helperSource = map[string]string{
	"__hql_get": `function __hql_get(coll, key, fallback) {
  if (coll == null) return fallback;
  if (coll instanceof Map) return coll.has(key) ? coll.get(key) : fallback;
  if (Array.isArray(coll)) return key in coll ? coll[key] : fallback;
  return Object.prototype.hasOwnProperty.call(coll, key) ? coll[key] : fallback;
}
`,
	"__hql_getNumeric": `function __hql_getNumeric(coll, key, fallback) {
  const v = __hql_get(coll, key, fallback);
  return typeof v === "number" ? v : Number(v);
}
`,
	"__hql_toSequence": `function __hql_toSequence(coll) {
  if (coll == null) return [];
  if (typeof coll[Symbol.iterator] === "function") return coll;
  return Object.entries(coll);
}
`,
	"__hql_for_each": `function __hql_for_each(seq, fn) {
  for (const item of __hql_toSequence(seq)) fn(item);
}
`,
	"__hql_range": `function __hql_range(start, end, step) {
  const s = step ?? 1;
  const out = [];
  if (s > 0) {
    for (let i = start; i < end; i += s) out.push(i);
  } else if (s < 0) {
    for (let i = start; i > end; i += s) out.push(i);
  }
  return out;
}
`,
	"__hql_hash_map": `function __hql_hash_map(pairs) {
  return new Map(pairs);
}
`,
	"__hql_deepFreeze": `function __hql_deepFreeze(obj) {
  Object.getOwnPropertyNames(obj).forEach((key) => {
    const value = obj[key];
    if (value && typeof value === "object" && !Object.isFrozen(value)) {
      __hql_deepFreeze(value);
    }
  });
  return Object.freeze(obj);
}
`,
	"__hql_throw": `function __hql_throw(value) {
  throw value;
}
`,
}

// helperDeps names, for a helper whose own body calls another helper,
// the dependency that must also be included in the prelude.
var helperDeps = map[string][]string{
	"__hql_for_each":   {"__hql_toSequence"},
	"__hql_getNumeric": {"__hql_get"},
}

// preludeFor returns the concatenated JS source for used and everything
// it transitively depends on, in a fixed (sorted) order so the same
// input always produces byte-identical output (spec §8: "compiling the
// same source twice ... produces byte-identical code and sourceMap").
func preludeFor(used []string) string {
	if len(used) == 0 {
		return ""
	}

	include := make(map[string]bool, len(used))
	var add func(name string)
	add = func(name string) {
		if include[name] {
			return
		}
		include[name] = true
		for _, dep := range helperDeps[name] {
			add(dep)
		}
	}
	for _, name := range used {
		add(name)
	}

	names := make([]string, 0, len(include))
	for name := range include {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(helperSource[name])
		b.WriteString("\n")
	}
	return b.String()
}
