package game

import (
	"math/rand/v2"
	"sort"
	"strings"
)

// buildThemePool unions the nominations in roster order, then tops up at
// random from dealt themes that are not already in the pool.
func buildThemePool(order []string, nominations map[string][]string, dealt map[string]bool, size int) []string {
	pool := make([]string, 0, size)
	inPool := make(map[string]bool)
	for _, id := range order {
		for _, theme := range nominations[id] {
			if inPool[theme] {
				continue
			}
			inPool[theme] = true
			pool = append(pool, theme)
		}
	}
	if len(pool) >= size {
		return pool
	}
	candidates := make([]string, 0, len(dealt))
	for theme := range dealt {
		if !inPool[theme] {
			candidates = append(candidates, theme)
		}
	}
	sort.Strings(candidates)
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	for _, theme := range candidates {
		if len(pool) >= size {
			break
		}
		pool = append(pool, theme)
	}
	return pool
}

// filterNominations keeps themes from the participant's menu, without
// duplicates, capped at limit.
func filterNominations(menu, submitted []string, limit int) []string {
	allowed := make(map[string]bool, len(menu))
	for _, theme := range menu {
		allowed[theme] = true
	}
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, theme := range submitted {
		theme = strings.TrimSpace(theme)
		if !allowed[theme] || seen[theme] {
			continue
		}
		seen[theme] = true
		out = append(out, theme)
		if len(out) == limit {
			break
		}
	}
	return out
}

// dealMenu returns an independently shuffled menu of up to size themes.
func dealMenu(names []string, size int) []string {
	menu := append([]string(nil), names...)
	rand.Shuffle(len(menu), func(i, j int) { menu[i], menu[j] = menu[j], menu[i] })
	if len(menu) > size {
		menu = menu[:size]
	}
	return menu
}

// rotate returns ids starting at offset and wrapping around.
func rotate(ids []string, offset int) []string {
	if len(ids) == 0 {
		return nil
	}
	offset %= len(ids)
	out := make([]string, 0, len(ids))
	out = append(out, ids[offset:]...)
	return append(out, ids[:offset]...)
}
