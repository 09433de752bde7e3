// Package version 描述 llmkit 自身的版本，用于 User-Agent 和诊断输出。
//
// llmkit 作为依赖被引入时无法通过 -ldflags 注入版本，此时从宿主二进制的
// 构建信息 (runtime/debug.ReadBuildInfo) 中解析模块版本。
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/gosuri/uitable"
)

// ModulePath 是 llmkit 的模块路径
const ModulePath = "github.com/lgc202/llmkit"

const develVersion = "v0.0.0-devel"

// 可通过 -ldflags "-X github.com/lgc202/llmkit/version.gitVersion=..." 覆盖
var (
	gitVersion = ""
	gitCommit  = ""
	buildDate  = ""
)

// Info 包含了版本信息
type Info struct {
	Module    string `json:"module"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// String 返回版本号，工作区有未提交修改时追加 -dirty
func (info Info) String() string {
	if info.Modified {
		return info.Version + "-dirty"
	}
	return info.Version
}

func (info Info) ToJSON() (string, error) {
	s, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("version: marshal: %w", err)
	}
	return string(s), nil
}

// Text 以对齐的表格形式返回版本信息
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("module:", info.Module)
	table.AddRow("version:", info.String())
	if info.GitCommit != "" {
		table.AddRow("gitCommit:", info.GitCommit)
	}
	if info.BuildDate != "" {
		table.AddRow("buildDate:", info.BuildDate)
	}
	table.AddRow("goVersion:", info.GoVersion)
	table.AddRow("platform:", info.Platform)
	return table.String()
}

// UserAgent 返回 "<product>/<version> (<go version>; <os>/<arch>)"
func UserAgent(product string) string {
	info := Get()
	return fmt.Sprintf("%s/%s (%s; %s)", product, info.Version, info.GoVersion, info.Platform)
}

var (
	buildOnce sync.Once
	buildInfo *debug.BuildInfo
)

func readBuildInfo() *debug.BuildInfo {
	buildOnce.Do(func() {
		if bi, ok := debug.ReadBuildInfo(); ok {
			buildInfo = bi
		}
	})
	return buildInfo
}

// Get 返回 llmkit 的版本信息
func Get() Info {
	return resolve(readBuildInfo())
}

func resolve(bi *debug.BuildInfo) Info {
	info := Info{
		Module:    ModulePath,
		Version:   gitVersion,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version != "" || bi == nil {
		if info.Version == "" {
			info.Version = develVersion
		}
		return info
	}

	switch {
	case bi.Main.Path == ModulePath:
		info.Version = bi.Main.Version
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.GitCommit = s.Value
			case "vcs.time":
				info.BuildDate = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	default:
		for _, dep := range bi.Deps {
			if dep.Path != ModulePath {
				continue
			}
			if dep.Replace != nil && dep.Replace.Version != "" {
				dep = dep.Replace
			}
			info.Version = dep.Version
			break
		}
	}

	if info.Version == "" || info.Version == "(devel)" {
		info.Version = develVersion
	}
	info.Version = strings.TrimSpace(info.Version)
	return info
}
