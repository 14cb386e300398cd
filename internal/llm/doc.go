// Package llm provides the provider abstraction for unify-llm.
//
// All remote inference providers are unified behind one streaming contract:
// an ordered message list goes in, a finite event sequence of text chunks,
// optional thinking chunks, and a terminal end or error event comes out.
//
// The providers/ subdirectory contains one small package per vendor. Most
// vendors speak an OpenAI-compatible chat completions API and share the
// openaicompat streaming core; vendor packages contribute their model
// catalog and request quirks (thinking toggles, temperature restrictions).
//
// Providers are configured via environment variables:
//
//	MISTRAL_API_KEY             - Mistral AI
//	QWEN_API_KEY / QWEN_BASE_URL        - Alibaba Qwen (DashScope)
//	GLM_API_KEY / GLM_BASE_URL          - Zhipu AI GLM
//	MINIMAX_API_KEY / MINIMAX_BASE_URL  - MiniMax
//	DEEPSEEK_API_KEY / DEEPSEEK_BASE_URL - DeepSeek
//	OPENAI_API_KEY / OPENAI_BASE_URL    - OpenAI
//	GEMINI_API_KEY / GEMINI_BASE_URL    - Google Gemini (OpenAI-compat endpoint)
//
// A provider whose key is missing at startup is omitted from the registry.
package llm
