package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lgc202/llmkit/config"
	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/chat"
	"github.com/lgc202/llmkit/llm/metrics"
	"github.com/lgc202/llmkit/version"
)

func main() {
	fmt.Println(version.Get().Text())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := chat.LoadSettings("./llmkit.yaml",
		config.WithDefaults[chat.Settings](map[string]any{
			"timeout":       "120s",
			"default_model": "gpt-4o-mini",
		}),
		config.WithLogger[chat.Settings](logger),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 密钥轮换不需要重建客户端，SettingsAuth 每次调用都读取最新配置
	cfg.OnChange(func(old, new chat.Settings) {
		for name, ps := range new.Providers {
			if config.Changed(old.Providers[name], ps) {
				log.Printf("[%s] 配置变更", name)
			}
		}
	})

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := append(cfg.Get().Options(),
		chat.WithAuth(chat.SettingsAuth(cfg)),
		chat.WithInterceptor(m.Interceptor()),
		chat.WithMiddleware(m.Middleware()),
		chat.WithLogger(logger),
	)
	client := chat.New(opts...)

	res, err := client.Chat(context.Background(), llm.NewRequest(nil,
		llm.WithMessages(llm.User("Say hello.")),
	))
	if err != nil {
		log.Printf("请求失败: %v", err)
	} else {
		log.Printf("%s: %s", res.Provider, res.FirstText())
	}

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":9090", nil); err != nil {
			log.Printf("metrics server: %v", err)
		}
	}()

	log.Println("修改 llmkit.yaml 将触发回调，指标见 :9090/metrics，Ctrl+C 退出")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
