package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/chat"
)

// getWeather 模拟天气查询工具
func getWeather(location string) string {
	weatherData := map[string]string{
		"北京": "22°C, 晴朗",
		"上海": "25°C, 多云",
		"深圳": "28°C, 阴天",
	}
	if weather, ok := weatherData[location]; ok {
		return fmt.Sprintf("%s 的天气: %s", location, weather)
	}
	return fmt.Sprintf("%s 的天气: 未知", location)
}

var weatherTool = llm.Tool{
	Name:        "get_weather",
	Description: "获取指定地点的当前天气",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"location": {"type": "string", "description": "城市名称，如：北京、上海、深圳"}
		},
		"required": ["location"]
	}`),
}

func main() {
	model := os.Getenv("MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}

	// 凭证从环境变量读取，例如 ANTHROPIC_API_KEY
	client := chat.New(chat.WithDefaults(llm.NewRequest(nil,
		llm.WithModel(model),
		llm.WithTools(weatherTool),
	)))

	messages := []llm.Message{llm.User("北京和上海今天天气怎么样？")}

	// 模型可能需要多次调用工具
	const maxSteps = 8
	for step := 0; step < maxSteps; step++ {
		res, err := client.Chat(context.Background(), llm.NewRequest(nil, llm.WithMessages(messages...)))
		if err != nil {
			log.Fatal(err)
		}
		msg := res.Choices[0].Message
		messages = append(messages, *msg)

		if len(msg.ToolCalls) == 0 {
			fmt.Println("\n最终回复:")
			fmt.Println(msg.Text())
			return
		}

		fmt.Println("模型决定调用工具:")
		for _, tc := range msg.ToolCalls {
			fmt.Printf("  - 调用: %s\n", tc.Name)
			fmt.Printf("    参数: %s\n", tc.Arguments)

			var args struct {
				Location string `json:"location"`
			}
			if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
				log.Fatal(err)
			}
			messages = append(messages, llm.ToolResult(tc.ID, getWeather(args.Location)))
		}
	}

	log.Fatalf("exceeded max tool-call steps (%d)", maxSteps)
}
