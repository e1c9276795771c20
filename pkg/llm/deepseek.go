// Package llm calls the DeepSeek chat completions API to parse free text
// into listing drafts. Callers fall back to a local parser when the API is
// unavailable or returns something that isn't the expected JSON array.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"tradelink/pkg/config"
)

type ParsedItem struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiURL:     cfg.DeepSeekAPIURL,
		apiKey:     cfg.DeepSeekAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const parsePrompt = `请将以下文本内容解析为结构化的交易信息数组。每行可能包含标题和价格信息。

解析规则：
1. 只提取包含明确价格的行
2. 价格通常以数字开头，可能包含"元"、"¥"等符号
3. 标题是价格前面的描述文字
4. 忽略无法解析的行
5. 输出JSON数组格式，每个对象包含title和price字段

原始文本：
%s

请只输出JSON数组，不要其他说明文字。格式示例：
[
  {"title": "成都周深演唱会门票", "price": 399},
  {"title": "上海周杰伦演唱会", "price": 880}
]`

var codeFencePattern = regexp.MustCompile("```json\n?|\n?```")

// ParseListings asks the model to extract {title, price} pairs from content.
func (c *Client) ParseListings(ctx context.Context, content string) ([]ParsedItem, error) {
	body, err := json.Marshal(chatRequest{
		Model: "deepseek-chat",
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(parsePrompt, content)},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepseek returned HTTP %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode deepseek response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("deepseek returned no choices")
	}

	// The model sometimes wraps the array in a markdown code fence.
	raw := strings.TrimSpace(codeFencePattern.ReplaceAllString(chatResp.Choices[0].Message.Content, ""))

	var items []ParsedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("deepseek response is not a JSON array: %w", err)
	}

	return items, nil
}
