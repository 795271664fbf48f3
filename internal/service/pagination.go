package service

import (
	"strings"
	"unicode"
)

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// normalizeTags 去除空白与重复标签，保留原有顺序。
func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// Slugify converts s into a lowercase, dash separated, URL-safe slug.
// Characters outside a-z and 0-9 collapse into single dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// jsonTagFilter 匹配 JSON 数组列中包含指定标签的行（sqlite json_each）。
func jsonTagFilter(table string) string {
	return "EXISTS (SELECT 1 FROM json_each(" + table + ".tags) WHERE json_each.value = ?)"
}

// calculateReadingTime 按每分钟 200 个英文单词或 400 个中日韩字符估算阅读时长。
func calculateReadingTime(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	words := 0
	cjk := 0
	inWord := false
	for _, r := range trimmed {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			cjk++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}

	minutes := (words + 199) / 200
	minutes += (cjk + 399) / 400
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
