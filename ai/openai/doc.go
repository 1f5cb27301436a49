// Package openai implements the ai service interfaces against
// OpenAI-compatible HTTP APIs (OpenAI itself, Ollama, LocalAI, vLLM).
//
// Both services are built on langchaingo: the embedder wraps an openai
// client in the embeddings helper, the narrator calls GenerateContent with
// JSON mode requested. Hosts and models come from ai.Config.
package openai
