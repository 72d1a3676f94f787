// Package report prints the human-readable self-check transcript.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"tweetdigest/internal/config"
)

const (
	maskedPlaceholder = "***"
	maskMinLength     = 12
	maskHead          = 6
	maskTail          = 4

	notSet = "未设置"
)

var (
	NextCommands = []string{
		"运行 `python test_config.py` 确认整体配置。",
		"运行 `python run_crawler.py --user-summaries` 做一次真实调用验证。",
	}

	requestHints = []string{
		"API Key 是否正确，是否有权限调用目标模型；",
		"Base URL 是否填写正确（OpenRouter/DeepSeek/OpenAI 兼容接口）；",
		"是否需要代理 / 是否有网络访问权限。",
	}
)

// MaskAPIKey keeps the first 6 and last 4 characters of keys longer than 12
// characters. Shorter keys are fully hidden.
func MaskAPIKey(key string) string {
	if utf8.RuneCountInString(key) <= maskMinLength {
		return maskedPlaceholder
	}

	runes := []rune(key)
	return string(runes[:maskHead]) + "..." + string(runes[len(runes)-maskTail:])
}

type Reporter struct {
	w io.Writer
}

func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Settings(s config.Settings) {
	r.println("🛠️ LLM 配置检测")
	r.println(strings.Repeat("-", 40))

	if s.APIKey != "" {
		r.printf("API Key: 已配置 (%s)\n", MaskAPIKey(s.APIKey))
	} else {
		r.println("API Key: 未找到 (请设置 LLM_API_KEY / DEEPSEEK_API_KEY / OPENROUTER_API_KEY 等)")
	}

	r.printf("模型: %s\n", orNotSet(s.Model))
	r.printf("Base URL: %s\n", orNotSet(s.BaseURL))
}

func (r *Reporter) SummarizerStarted() {
	r.println("\n⏳ 初始化 Summarizer（只检查依赖和配置，不会调用真实接口）...")
}

func (r *Reporter) SummarizerReady() {
	r.println("✅ 初始化完成，请留意日志中输出的依赖/模型/接口地址信息。")
}

func (r *Reporter) SummarizerFailed(err error) {
	r.printf("❌ 初始化失败: %v\n", err)
	r.println("💡 请检查网络、OpenAI 客户端配置，以及 Base URL 是否为可用的 OpenAI 兼容接口。")
}

func (r *Reporter) ProbeStarted() {
	r.println("\n🤖 发送测试请求到大模型...")
}

func (r *Reporter) ClientUnavailable() {
	r.println("⚠️ OpenAI 客户端不可用，已跳过测试请求。")
}

func (r *Reporter) MissingAPIKey() {
	r.println("❌ 缺少 API Key，无法请求。请设置环境变量 LLM_API_KEY / DEEPSEEK_API_KEY / OPENROUTER_API_KEY 等。")
}

func (r *Reporter) ProbeSucceeded(content string) {
	r.printf("✅ 模型响应: %q\n", content)
}

func (r *Reporter) ProbeFailed(err error) {
	r.printf("❌ 模型调用失败: %v\n", err)
	r.println("💡 检查事项：")
	for _, hint := range requestHints {
		r.printf("   - %s\n", hint)
	}
}

func (r *Reporter) NextSteps() {
	r.println("\n下一步建议：")
	for i, cmd := range NextCommands {
		r.printf("%d) %s\n", i+1, cmd)
	}
}

// Console output is best effort; a broken stdout has nowhere to be reported.
func (r *Reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) println(line string) {
	_, _ = fmt.Fprintln(r.w, line)
}

func orNotSet(value string) string {
	if value == "" {
		return notSet
	}
	return value
}
