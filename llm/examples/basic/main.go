package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/chat"
)

func main() {
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println("set OPENAI_API_KEY")
		return
	}

	client := chat.New(chat.WithDefaults(llm.NewRequest(nil, llm.WithModel("gpt-4o-mini"))))

	res := client.ChatSafe(context.Background(), llm.NewRequest(nil,
		llm.WithMessages(llm.User("Say hello.")),
	))
	if !res.OK {
		fmt.Printf("请求失败 (http %d): %v\n", res.StatusCode, res.Err)
		return
	}
	fmt.Println(res.Result.FirstText())
}
