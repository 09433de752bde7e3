package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/chat"
)

func main() {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		log.Fatal("DEEPSEEK_API_KEY environment variable is required")
	}

	// deepseek 没有专属适配器，走 OpenAI 兼容形状
	client := chat.New(chat.WithAPIKey(llm.ProviderDeepSeek, apiKey))

	stream, err := client.ChatStream(context.Background(), llm.NewRequest(nil,
		llm.WithModelInfo(llm.Model{Name: "deepseek-chat", Provider: llm.ProviderDeepSeek}),
		llm.WithMessages(llm.User("用 3 点介绍 Go 语言的特点")),
		llm.WithStreamIncludeUsage(true),
	))
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	fmt.Println("流式回复:")
	fmt.Println("---")

	var acc llm.Accumulator
	for {
		res, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		acc.Apply(res)
		fmt.Print(res.FirstText())
	}

	if u := acc.Usage; u != nil {
		fmt.Printf("\n\n---\nToken 使用: %d\n", u.TotalTokens)
	}
	fmt.Println("\n---")
	fmt.Println("流结束")
}
