package config

const DefaultPersona = "You are a gentle, optimistic virtual companion. " +
	"You talk with the user warmly, like a close friend, and like to use metaphors and words of encouragement. " +
	"Reply in natural spoken language without lists, asterisks or numbering."

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/companion",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		LLM: LLMConfig{
			APIURL:         "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
			Model:          "qwen-plus",
			Temperature:    0.7,
			MaxRetries:     3,
			TimeoutSeconds: 120,
		},
		History: HistoryConfig{
			MaxTurns: 20,
			Memories: 3,
		},
		Persona: PersonaConfig{
			Prompt: DefaultPersona,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Companion System Configuration
# Location: ~/.config/companion/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the user config, debug log and exports are stored
data_directory = "~/.local/share/companion"
`
}

func GenerateUserConfigTemplate() string {
	return `# Companion User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io
#
# The API key is read from the environment only:
#   COMPANION_API_KEY, then DASHSCOPE_API_KEY, then OPENAI_API_KEY

[llm]
# Chat endpoint. OpenAI-compatible example:
#   api_url = "https://api.deepseek.com/v1/chat/completions"
#   model = "deepseek-chat"
api_url = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
model = "qwen-plus"

# Wire format: "openai", "dashscope" or "ollama".
# Leave empty to pick it from the model name (unknown models use "openai").
style = ""

temperature = 0.7
max_retries = 3
timeout_seconds = 120

# Disables TLS certificate verification for the LLM endpoint.
# Only for self-signed test endpoints. Never enable this against the internet.
insecure_skip_verify = false

# Ask the model for {"reply": ..., "expression": ...} JSON replies
structured_replies = false

[history]
# Live window size. Reaching it archives the oldest half.
max_turns = 20

# How many recent answers are offered to the model as memories
memories = 3

# SQLite file for archived turns. Empty keeps the archive in memory.
archive_path = ""

[persona]
prompt = "` + DefaultPersona + `"
`
}
