package nlp

import "strings"

var aliases = map[string][]string{
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"golang":     {"go"},
	"go":         {"golang"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"rest":       {"rest api"},
	"rest api":   {"rest"},
	"ci cd":      {"cicd"},
	"cicd":       {"ci cd"},
}

// SkillVariants returns normalized variants of a skill name (itself plus known aliases).
func SkillVariants(skill string) []string {
	base := Normalize(skill)
	if base == "" {
		return []string{}
	}
	out := []string{base}
	seen := map[string]struct{}{base: {}}
	add := func(s string) {
		s = Normalize(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, a := range aliases[base] {
		add(a)
	}
	// token-level expansion for multi-word skills: "golang developer" -> "go developer"
	parts := strings.Split(base, " ")
	if len(parts) > 1 {
		expanded := make([]string, len(parts))
		changed := false
		for i, p := range parts {
			expanded[i] = p
			if alt, ok := aliases[p]; ok && !strings.Contains(alt[0], " ") {
				expanded[i] = alt[0]
				changed = true
			}
		}
		if changed {
			add(strings.Join(expanded, " "))
		}
	}
	return out
}

// SameSkill reports whether two skill names refer to the same skill.
func SameSkill(a, b string) bool {
	nb := Normalize(b)
	if nb == "" {
		return false
	}
	for _, v := range SkillVariants(a) {
		if v == nb {
			return true
		}
	}
	return false
}
