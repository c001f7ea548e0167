package provider_test

import (
	"context"
	"fmt"
	"log"

	"companion/provider"
)

// ExampleStyleForModel shows how model identifiers map to wire styles.
func ExampleStyleForModel() {
	fmt.Println(provider.StyleForModel("qwen-plus"))
	fmt.Println(provider.StyleForModel("deepseek-chat"))
	fmt.Println(provider.StyleForModel("brand-new-model"))
	// Output:
	// dashscope
	// openai
	// openai
}

// ExampleDashScopeAdapter_ParseResponse extracts the reply from a DashScope body.
func ExampleDashScopeAdapter_ParseResponse() {
	text, err := provider.DashScopeAdapter{}.ParseResponse([]byte(`{"output":{"text":"hi there"}}`))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(text)
	// Output: hi there
}

// ExampleClient_Generate demonstrates a plain text request.
//
// Note: This example doesn't run because it needs a live endpoint.
func ExampleClient_Generate() {
	client := provider.NewClient(provider.Config{
		APIKey: "sk-...",
		APIURL: "https://api.deepseek.com/v1/chat/completions",
		Model:  "deepseek-chat",
	})

	reply, err := client.Generate(context.Background(), "Hello!",
		provider.WithTemperature(0.7),
		provider.WithMaxRetries(3),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply)
}
