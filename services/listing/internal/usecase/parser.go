package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tradelink/pkg/llm"
)

var pricePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseLines is the deterministic fallback for batch parsing when the LLM is
// unavailable or returns garbage. Per line: the first numeric run is the
// price, the title is the line minus that run and any currency symbols.
// Lines without a number are dropped; an empty leftover title becomes 商品N.
func parseLines(content string) []llm.ParsedItem {
	var items []llm.ParsedItem
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := pricePattern.FindString(line)
		if match == "" {
			continue
		}
		price, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}

		title := strings.Replace(line, match, "", 1)
		title = strings.NewReplacer("元", "", "¥", "", "￥", "").Replace(title)
		title = strings.TrimSpace(title)
		if title == "" {
			title = fmt.Sprintf("商品%d", len(items)+1)
		}

		items = append(items, llm.ParsedItem{Title: title, Price: price})
	}
	return items
}
